package posixrt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dottedmag/posixrt/script"
	"golang.org/x/sys/unix"
)

// Bind registers the signal builtins on m:
//
//	signal NAME HANDLER        HANDLER is ignore, cdefault, default or a proc
//	alarm SECONDS
//	kill PID NAME
//	raise NAME
//	sigmask HOW [INIT] [+NAME...] [-NAME...]
//	sigsuspend [INIT] [+NAME...] [-NAME...]
//	getpid
//	signals                    every accepted signal name, sorted
func (b *Bridge) Bind(m *script.Machine) {
	m.Register("signal", b.builtinSignal)
	m.Register("alarm", b.builtinAlarm)
	m.Register("kill", b.builtinKill)
	m.Register("raise", b.builtinRaise)
	m.Register("sigmask", b.builtinSigmask)
	m.Register("sigsuspend", b.builtinSigsuspend)
	m.Register("getpid", func(*script.Machine, []string) (string, error) {
		return strconv.Itoa(unix.Getpid()), nil
	})
	m.Register("signals", func(*script.Machine, []string) (string, error) {
		return strings.Join(b.table.Names(), " "), nil
	})
}

func (b *Bridge) builtinSignal(m *script.Machine, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("signal: expected a signal name and a handler")
	}
	h, err := ParseHandler(args[1])
	if err != nil {
		if !m.HasProc(args[1]) {
			return "", fmt.Errorf("signal: %w", err)
		}
		proc := args[1]
		h = Func(func(name string) error {
			return m.CallProc(proc, name)
		})
	}
	return "", b.Signal(args[0], h)
}

func (b *Bridge) builtinAlarm(m *script.Machine, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("alarm: expected seconds")
	}
	secs, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("alarm: invalid seconds %q", args[0])
	}
	left, err := b.Alarm(secs)
	return strconv.Itoa(left), err
}

func (b *Bridge) builtinKill(m *script.Machine, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("kill: expected a pid and a signal name")
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("kill: invalid pid %q", args[0])
	}
	ret, err := b.Kill(pid, args[1])
	return strconv.Itoa(ret), err
}

func (b *Bridge) builtinRaise(m *script.Machine, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("raise: expected a signal name")
	}
	ret, err := b.Raise(args[0])
	return strconv.Itoa(ret), err
}

func (b *Bridge) builtinSigmask(m *script.Machine, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("sigmask: expected block, unblock or set")
	}
	how, err := ParseHow(args[0])
	if err != nil {
		return "", fmt.Errorf("sigmask: %w", err)
	}
	init, add, remove, err := parseSetArgs(args[1:])
	if err != nil {
		return "", fmt.Errorf("sigmask: %w", err)
	}
	return "", b.Sigmask(how, init, add, remove)
}

func (b *Bridge) builtinSigsuspend(m *script.Machine, args []string) (string, error) {
	init, add, remove, err := parseSetArgs(args)
	if err != nil {
		return "", fmt.Errorf("sigsuspend: %w", err)
	}
	return "", b.Sigsuspend(context.Background(), init, add, remove)
}

// parseSetArgs reads [INIT] [+NAME...] [-NAME...].
func parseSetArgs(args []string) (Init, []string, []string, error) {
	init := InitCur
	var add, remove []string
	for i, a := range args {
		switch {
		case strings.HasPrefix(a, "+"):
			add = append(add, a[1:])
		case strings.HasPrefix(a, "-"):
			remove = append(remove, a[1:])
		case i == 0:
			var err error
			if init, err = ParseInit(a); err != nil {
				return 0, nil, nil, err
			}
		default:
			return 0, nil, nil, fmt.Errorf("unexpected argument %q", a)
		}
	}
	return init, add, remove, nil
}
