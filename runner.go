package posixrt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cortesi/termlog"
	"github.com/dottedmag/posixrt/conf"
	"github.com/dottedmag/posixrt/fsutil"
	"github.com/dottedmag/posixrt/proc"
	"github.com/dottedmag/posixrt/regex"
	"github.com/dottedmag/posixrt/script"
	"github.com/dottedmag/posixrt/term"
)

// Version is the posixrt release version
const Version = "0.1-pre"

// CoreScript is run when no script is named.
const CoreScript = "core.psx"

// Runner coordinates running a script under the signal bridge
type Runner struct {
	Log      termlog.TermLog
	Config   *conf.Config
	ConfPath string
	Runtime  string
	Stdout   io.Writer
}

// NewRunner constructs a new Runner. An empty confPath means defaults.
func NewRunner(confPath string, runtime string, log termlog.TermLog) (*Runner, error) {
	r := &Runner{
		Log:      log,
		ConfPath: confPath,
		Runtime:  runtime,
		Stdout:   os.Stdout,
	}
	err := r.ReadConfig()
	if err != nil {
		return nil, err
	}
	if r.Config.Runtime != "" {
		r.Runtime = r.Config.Runtime
	}
	return r, nil
}

// ReadConfig parses the configuration file in ConfPath
func (r *Runner) ReadConfig() error {
	if r.ConfPath == "" {
		r.Config = &conf.Config{}
		return nil
	}
	ret, err := os.ReadFile(r.ConfPath)
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", r.ConfPath, err)
	}
	newcnf, err := conf.Parse(r.ConfPath, string(ret))
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", r.ConfPath, err)
	}
	r.Config = newcnf
	return nil
}

// RuntimeDir locates the runtime directory of an installed executable: the
// share directory next to its bin directory.
func RuntimeDir(exe string) (string, error) {
	real, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("unable to resolve %s: %w", exe, err)
	}
	real, err = filepath.Abs(real)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(real)
	if filepath.Base(dir) == "bin" {
		dir = filepath.Dir(dir)
	}
	return filepath.Join(dir, "share"), nil
}

// ScriptPath picks the script to run: arg if given, then the configured
// script, then the core script in the runtime directory. Relative configured
// paths are taken from the config file's directory.
func (r *Runner) ScriptPath(arg string) string {
	if arg != "" {
		return arg
	}
	if s := r.Config.Script; s != "" {
		if !filepath.IsAbs(s) && r.ConfPath != "" {
			s = filepath.Join(filepath.Dir(r.ConfPath), s)
		}
		return s
	}
	return filepath.Join(r.Runtime, CoreScript)
}

func (r *Runner) bridgeOptions() (Options, error) {
	policy, err := ParseErrorPolicy(r.Config.Dispatch.OnError)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Log:           r.Log,
		QueueCapacity: r.Config.Dispatch.Queue,
		OnError:       policy,
		RaiseTimeout:  r.Config.Dispatch.RaiseTimeout.Duration,
	}, nil
}

func (r *Runner) applyTraps(b *Bridge) error {
	for _, t := range r.Config.Traps {
		h, err := ParseHandler(t.Action)
		if err != nil {
			return fmt.Errorf("trap %s: %w", t.Signal.Name, err)
		}
		if err := b.Signal(t.Signal.Name, h); err != nil {
			return fmt.Errorf("trap %s: %w", t.Signal.Name, err)
		}
	}
	return nil
}

// Run is the top-level runner for posixrt. It runs the script at path with
// every builtin bound and returns the script's error, if any.
func (r *Runner) Run(path string) error {
	m := script.New(r.Log)
	if r.Stdout != nil {
		m.Stdout = r.Stdout
	}
	opts, err := r.bridgeOptions()
	if err != nil {
		return err
	}
	b, err := New(m, opts)
	if err != nil {
		return err
	}
	defer b.Close()

	if len(r.Config.Traps) > 0 {
		r.Log.SayAs("debug", "traps: %v", conf.TrapSignals(r.Config))
	}
	if err := r.applyTraps(b); err != nil {
		return err
	}

	b.Bind(m)
	proc.Bind(m)
	fsutil.Bind(m)
	term.Bind(m)
	regex.Bind(m)
	m.SetVar("runtime", r.Runtime)

	r.Log.SayAs("debug", "running %s", path)
	err = m.RunFile(path)
	if err != nil {
		return err
	}
	// Deliver anything that arrived after the last safe point.
	return b.Dispatch()
}
