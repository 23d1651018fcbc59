package posixrt

import (
	"fmt"
)

// Callback is a user signal handler. It receives the canonical signal name.
type Callback func(name string) error

type handlerKind int

const (
	kindFunc handlerKind = iota + 1
	kindIgnore
	kindCDefault
	kindDefault
)

// Handler is what Signal installs for a signal.
type Handler struct {
	kind handlerKind
	cb   Callback
}

var (
	// Ignore discards the signal.
	Ignore = Handler{kind: kindIgnore}
	// CDefault installs the platform default disposition directly.
	CDefault = Handler{kind: kindCDefault}
	// Default restores the disposition the process had before the signal
	// was first installed through the bridge. It is a no-op for signals the
	// bridge never touched.
	Default = Handler{kind: kindDefault}
)

// Func wraps a callback.
func Func(cb Callback) Handler {
	return Handler{kind: kindFunc, cb: cb}
}

// ParseHandler parses one of the pseudo handler names.
func ParseHandler(s string) (Handler, error) {
	switch s {
	case "ignore":
		return Ignore, nil
	case "cdefault":
		return CDefault, nil
	case "default":
		return Default, nil
	}
	return Handler{}, fmt.Errorf("%w: %q", ErrInvalidHandler, s)
}

type disposition int

const (
	dispUnset disposition = iota
	dispDefault
	dispIgnore
	dispCallback
)

func (d disposition) String() string {
	switch d {
	case dispDefault:
		return "default"
	case dispIgnore:
		return "ignore"
	case dispCallback:
		return "callback"
	}
	return "unset"
}

// registration is the per-signal record. previous is written once, on the
// first install, and never again.
type registration struct {
	number   int
	name     string
	previous disposition
	current  disposition
	callback Callback
}

type registry struct {
	regs []*registration
}

func newRegistry(max int) *registry {
	return &registry{regs: make([]*registration, max+1)}
}

func (r *registry) get(n int) *registration {
	if n <= 0 || n >= len(r.regs) {
		return nil
	}
	return r.regs[n]
}

func (r *registry) ensure(n int, name string) *registration {
	if reg := r.get(n); reg != nil {
		return reg
	}
	reg := &registration{number: n, name: name}
	r.regs[n] = reg
	return reg
}

// notified reports whether the trampoline will observe deliveries of n.
func (r *registry) notified(n int) bool {
	reg := r.get(n)
	return reg != nil && reg.current == dispCallback
}

func (r *registry) each(fn func(*registration)) {
	for _, reg := range r.regs {
		if reg != nil {
			fn(reg)
		}
	}
}
