package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dottedmag/posixrt/sigtab"
)

// This binary prints all the signals it receives. Signals named on the
// command line are reported as ignored. SIGTERM makes it exit.

var watched = []string{
	"SIGHUP", "SIGINT", "SIGQUIT", "SIGTERM", "SIGUSR1", "SIGUSR2",
	"SIGWINCH", "SIGALRM", "SIGCONT",
}

func main() {
	table := sigtab.Default()
	ignored := map[os.Signal]bool{}
	for _, name := range os.Args[1:] {
		n, err := table.Number(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		ignored[syscall.Signal(n)] = true
	}

	sigCh := make(chan os.Signal, 1)
	for _, name := range watched {
		n, _ := table.Number(name)
		signal.Notify(sigCh, syscall.Signal(n))
	}

	fmt.Printf("ready %d\n", syscall.Getpid())

	for sig := range sigCh {
		name, _ := table.Name(int(sig.(syscall.Signal)))
		if ignored[sig] {
			fmt.Printf("ignoring %s\n", name)
			continue
		}
		fmt.Printf("got %s\n", name)
		if sig == syscall.SIGTERM {
			return
		}
	}
}
