package posixrt

import (
	"fmt"

	"github.com/dottedmag/posixrt/sigtab"
)

// How selects how Sigmask combines the working set with the current mask.
type How int

const (
	Block How = iota
	Unblock
	SetMask
)

// ParseHow parses "block", "unblock" or "set".
func ParseHow(s string) (How, error) {
	switch s {
	case "block":
		return Block, nil
	case "unblock":
		return Unblock, nil
	case "set":
		return SetMask, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidHow, s)
}

// Init seeds the working set before additions and removals.
type Init int

const (
	InitCur Init = iota
	InitAll
	InitNone
)

// ParseInit parses "all", "none" or "cur".
func ParseInit(s string) (Init, error) {
	switch s {
	case "cur":
		return InitCur, nil
	case "all":
		return InitAll, nil
	case "none":
		return InitNone, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidInit, s)
}

// sigset is a bitset indexed by signal number.
type sigset []uint64

func newSigset(max int) sigset {
	return make(sigset, max/64+1)
}

func (s sigset) add(n int) {
	if n > 0 && n/64 < len(s) {
		s[n/64] |= 1 << (n % 64)
	}
}

func (s sigset) del(n int) {
	if n > 0 && n/64 < len(s) {
		s[n/64] &^= 1 << (n % 64)
	}
}

func (s sigset) has(n int) bool {
	return n > 0 && n/64 < len(s) && s[n/64]&(1<<(n%64)) != 0
}

func (s sigset) clone() sigset {
	return append(sigset(nil), s...)
}

func (s sigset) fill(t *sigtab.Table) {
	for _, d := range t.Signals() {
		s.add(d.Number)
	}
}

// buildSet seeds a set from init, then applies add and remove. Unknown
// names are skipped. Must be called with b.mu held.
func (b *Bridge) buildSet(init Init, add, remove []string) (sigset, error) {
	var s sigset
	switch init {
	case InitCur:
		s = b.mask.clone()
	case InitAll:
		s = newSigset(b.table.Max())
		s.fill(b.table)
	case InitNone:
		s = newSigset(b.table.Max())
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidInit, init)
	}
	for _, name := range add {
		if n, err := b.table.Number(name); err == nil {
			s.add(n)
		}
	}
	for _, name := range remove {
		if n, err := b.table.Number(name); err == nil {
			s.del(n)
		}
	}
	return s, nil
}

// releaseHeld posts held signals that are no longer blocked, lowest number
// first. Must be called with b.mu held.
func (b *Bridge) releaseHeld() {
	for n := 1; n <= b.table.Max(); n++ {
		if b.held.has(n) && !b.mask.has(n) {
			b.held.del(n)
			b.post(n)
		}
	}
}
