package term

import (
	"fmt"
	"strconv"

	"github.com/dottedmag/posixrt/script"
)

const stdin = 0

type binding struct {
	raw *State
	ti  *Terminfo
}

// Bind registers the terminal builtins on m. They act on standard input.
//
//	setcanon on|off
//	setecho on|off
//	rawmode on|off       off restores the state saved by on
//	termsize             "COLUMNS ROWS"
//	isatty [FD]          "true" or "false"
//	tinit [TERM]         load terminfo, $TERM by default
//	tigetflag CAP
//	tigetnum CAP
//	tigetstr CAP
//	putcap CAP [INT...]  writes the expanded capability to stdout
//
// The capability builtins load terminfo for $TERM on first use if tinit
// was not called.
func Bind(m *script.Machine) {
	b := &binding{}
	m.Register("setcanon", flagBuiltin("setcanon", SetCanon))
	m.Register("setecho", flagBuiltin("setecho", SetEcho))
	m.Register("rawmode", b.builtinRawmode)
	m.Register("termsize", builtinTermsize)
	m.Register("isatty", builtinIsatty)
	m.Register("tinit", b.builtinTinit)
	m.Register("tigetflag", b.builtinTigetflag)
	m.Register("tigetnum", b.builtinTigetnum)
	m.Register("tigetstr", b.builtinTigetstr)
	m.Register("putcap", b.builtinPutcap)
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func flagBuiltin(name string, set func(fd int, on bool) error) script.Builtin {
	return func(m *script.Machine, args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("%s: expected on or off", name)
		}
		on, err := parseSwitch(args[0])
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return "", set(stdin, on)
	}
}

func (b *binding) builtinRawmode(m *script.Machine, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("rawmode: expected on or off")
	}
	on, err := parseSwitch(args[0])
	if err != nil {
		return "", fmt.Errorf("rawmode: %w", err)
	}
	if on {
		if b.raw != nil {
			return "", nil
		}
		st, err := MakeRaw(stdin)
		if err != nil {
			return "", err
		}
		b.raw = st
		return "", nil
	}
	if b.raw == nil {
		return "", nil
	}
	if err := Restore(stdin, b.raw); err != nil {
		return "", err
	}
	b.raw = nil
	return "", nil
}

func builtinTermsize(m *script.Machine, args []string) (string, error) {
	w, h, err := Size(stdin)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d", w, h), nil
}

func builtinIsatty(m *script.Machine, args []string) (string, error) {
	fd := stdin
	if len(args) > 0 {
		var err error
		if fd, err = strconv.Atoi(args[0]); err != nil {
			return "", fmt.Errorf("isatty: invalid descriptor %q", args[0])
		}
	}
	return strconv.FormatBool(IsTerminal(fd)), nil
}

func (b *binding) builtinTinit(m *script.Machine, args []string) (string, error) {
	name := ""
	if len(args) > 0 {
		name = args[0]
	}
	ti, err := LoadTerminfo(name)
	if err != nil {
		return "", err
	}
	b.ti = ti
	return "", nil
}

func (b *binding) loaded() (*Terminfo, error) {
	if b.ti == nil {
		ti, err := LoadTerminfo("")
		if err != nil {
			return nil, err
		}
		b.ti = ti
	}
	return b.ti, nil
}

func oneCap(name string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s: expected a capability name", name)
	}
	return nil
}

func (b *binding) builtinTigetflag(m *script.Machine, args []string) (string, error) {
	if err := oneCap("tigetflag", args); err != nil {
		return "", err
	}
	ti, err := b.loaded()
	if err != nil {
		return "", err
	}
	v, err := ti.Flag(args[0])
	return strconv.FormatBool(v), err
}

func (b *binding) builtinTigetnum(m *script.Machine, args []string) (string, error) {
	if err := oneCap("tigetnum", args); err != nil {
		return "", err
	}
	ti, err := b.loaded()
	if err != nil {
		return "", err
	}
	v, err := ti.Num(args[0])
	if err != nil {
		return "", err
	}
	return strconv.Itoa(v), nil
}

func (b *binding) builtinTigetstr(m *script.Machine, args []string) (string, error) {
	if err := oneCap("tigetstr", args); err != nil {
		return "", err
	}
	ti, err := b.loaded()
	if err != nil {
		return "", err
	}
	return ti.Str(args[0])
}

func (b *binding) builtinPutcap(m *script.Machine, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("putcap: expected a capability name")
	}
	params := make([]int, len(args)-1)
	for i, a := range args[1:] {
		p, err := strconv.Atoi(a)
		if err != nil {
			return "", fmt.Errorf("putcap: invalid parameter %q", a)
		}
		params[i] = p
	}
	ti, err := b.loaded()
	if err != nil {
		return "", err
	}
	return "", ti.Put(m.Stdout, args[0], params...)
}
