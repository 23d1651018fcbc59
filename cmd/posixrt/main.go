package main

import (
	"errors"
	"os"

	"github.com/adrg/xdg"
	"github.com/cortesi/termlog"
	"github.com/dottedmag/posixrt"
	"github.com/dottedmag/posixrt/script"
	"gopkg.in/alecthomas/kingpin.v2"
)

const confName = "posixrt/posixrt.toml"

func main() {
	file := kingpin.Flag("config", "Path to config file").Short('f').String()
	noConf := kingpin.Flag("noconf", "Don't search for a config file").Short('c').Bool()
	runtime := kingpin.Flag("runtime", "Runtime directory holding "+posixrt.CoreScript).String()
	debug := kingpin.Flag("debug", "Debugging for posixrt development").Bool()
	scriptPath := kingpin.Arg("script", "Script to run").String()

	kingpin.Version(posixrt.Version)
	kingpin.Parse()

	log := termlog.NewLog()
	if *debug {
		log.Enable("debug")
	}

	confPath := *file
	if confPath == "" && !*noConf {
		if p, err := xdg.SearchConfigFile(confName); err == nil {
			confPath = p
		}
	}

	rt := *runtime
	if rt == "" {
		exe, err := os.Executable()
		if err != nil {
			log.Shout("%s", err)
			os.Exit(1)
		}
		rt, err = posixrt.RuntimeDir(exe)
		if err != nil {
			log.Shout("%s", err)
			os.Exit(1)
		}
	}

	r, err := posixrt.NewRunner(confPath, rt, log)
	if err != nil {
		log.Shout("%s", err)
		os.Exit(1)
	}
	log.SayAs("debug", "config %q, runtime %s", confPath, r.Runtime)

	err = r.Run(r.ScriptPath(*scriptPath))
	var ee script.ExitError
	switch {
	case err == nil:
	case errors.As(err, &ee):
		os.Exit(ee.Code)
	default:
		log.Shout("%s", err)
		os.Exit(1)
	}
}
