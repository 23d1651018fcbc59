// Package sigtab maps canonical signal names ("SIGINT") to signal numbers
// and back. The table is built once from the platform's signal list.
package sigtab

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"syscall"

	expmaps "golang.org/x/exp/maps"
	"golang.org/x/sys/unix"
)

// ErrUnknownSignal is returned for names and numbers that are not in the table.
var ErrUnknownSignal = errors.New("invalid signal name")

// scanLimit bounds the numbers scanned when building the table. It is well
// above the highest standard signal on every supported platform.
const scanLimit = 128

// Descriptor is one supported signal.
type Descriptor struct {
	Number int
	Name   string
}

// Table is an immutable bidirectional signal name table.
type Table struct {
	byName map[string]int
	byNum  []string
	max    int
}

// Default returns the process-wide table for the running platform.
var Default = sync.OnceValue(build)

func build() *Table {
	t := &Table{byName: map[string]int{}}
	var descs []Descriptor
	for n := 1; n < scanLimit; n++ {
		name := unix.SignalName(syscall.Signal(n))
		if name == "" {
			continue
		}
		descs = append(descs, Descriptor{n, name})
		if n > t.max {
			t.max = n
		}
	}
	t.byNum = make([]string, t.max+1)
	for _, d := range descs {
		t.byNum[d.Number] = d.Name
		t.byName[d.Name] = d.Number
	}
	for alias, sig := range aliases {
		if _, ok := t.byName[alias]; !ok && int(sig) <= t.max {
			t.byName[alias] = int(sig)
		}
	}
	return t
}

// Number resolves a signal name. Aliases such as SIGIOT are accepted.
func (t *Table) Number(name string) (int, error) {
	n, ok := t.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSignal, name)
	}
	return n, nil
}

// Name returns the canonical name for a signal number.
func (t *Table) Name(n int) (string, error) {
	if n <= 0 || n >= len(t.byNum) || t.byNum[n] == "" {
		return "", fmt.Errorf("%w: %d", ErrUnknownSignal, n)
	}
	return t.byNum[n], nil
}

// Max is the highest supported signal number.
func (t *Table) Max() int {
	return t.max
}

// Signals lists every canonical descriptor in ascending number order.
func (t *Table) Signals() []Descriptor {
	var out []Descriptor
	for n, name := range t.byNum {
		if name != "" {
			out = append(out, Descriptor{n, name})
		}
	}
	return out
}

// Names lists every accepted name, aliases included, sorted.
func (t *Table) Names() []string {
	out := expmaps.Keys(t.byName)
	sort.Strings(out)
	return out
}
