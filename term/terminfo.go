package term

import (
	"errors"
	"fmt"
	"io"

	"github.com/xo/terminfo"
)

type capKind int

const (
	capBool capKind = iota + 1
	capNum
	capString
)

func (k capKind) String() string {
	switch k {
	case capBool:
		return "boolean"
	case capNum:
		return "numeric"
	case capString:
		return "string"
	}
	return "unknown"
}

type capRef struct {
	kind  capKind
	index int
}

// capIndex maps short (terminfo source) and long capability names.
var capIndex = func() map[string]capRef {
	m := map[string]capRef{}
	for i := 0; i < terminfo.CapCountBool; i++ {
		m[terminfo.BoolCapName(i)] = capRef{capBool, i}
		m[terminfo.BoolCapNameShort(i)] = capRef{capBool, i}
	}
	for i := 0; i < terminfo.CapCountNum; i++ {
		m[terminfo.NumCapName(i)] = capRef{capNum, i}
		m[terminfo.NumCapNameShort(i)] = capRef{capNum, i}
	}
	for i := 0; i < terminfo.CapCountString; i++ {
		m[terminfo.StringCapName(i)] = capRef{capString, i}
		m[terminfo.StringCapNameShort(i)] = capRef{capString, i}
	}
	return m
}()

// ErrCapNotFound is returned for capabilities the terminal lacks.
var ErrCapNotFound = errors.New("capability not found")

// Terminfo answers capability queries for one terminal type.
type Terminfo struct {
	ti *terminfo.Terminfo
}

// LoadTerminfo reads the terminfo entry for name, or for $TERM if name is
// empty.
func LoadTerminfo(name string) (*Terminfo, error) {
	var (
		ti  *terminfo.Terminfo
		err error
	)
	if name == "" {
		ti, err = terminfo.LoadFromEnv()
	} else {
		ti, err = terminfo.Load(name)
	}
	if err != nil {
		return nil, &Error{"setupterm", err}
	}
	return &Terminfo{ti}, nil
}

func lookupCap(name string, kind capKind) (int, error) {
	ref, ok := capIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCapNotFound, name)
	}
	if ref.kind != kind {
		return 0, fmt.Errorf("%s is not a %s capability", name, kind)
	}
	return ref.index, nil
}

// Flag returns a boolean capability. Absent flags are false.
func (t *Terminfo) Flag(name string) (bool, error) {
	i, err := lookupCap(name, capBool)
	if err != nil {
		return false, err
	}
	return t.ti.Bools[i], nil
}

// Num returns a numeric capability.
func (t *Terminfo) Num(name string) (int, error) {
	i, err := lookupCap(name, capNum)
	if err != nil {
		return 0, err
	}
	v, ok := t.ti.Nums[i]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrCapNotFound, name)
	}
	return v, nil
}

// Str returns a string capability unexpanded.
func (t *Terminfo) Str(name string) (string, error) {
	i, err := lookupCap(name, capString)
	if err != nil {
		return "", err
	}
	v, ok := t.ti.Strings[i]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrCapNotFound, name)
	}
	return string(v), nil
}

// Put expands a string capability with up to nine parameters and writes
// it to w.
func (t *Terminfo) Put(w io.Writer, name string, params ...int) error {
	if len(params) > 9 {
		return fmt.Errorf("%s: too many parameters", name)
	}
	i, err := lookupCap(name, capString)
	if err != nil {
		return err
	}
	if _, ok := t.ti.Strings[i]; !ok {
		return fmt.Errorf("%w: %s", ErrCapNotFound, name)
	}
	args := make([]interface{}, len(params))
	for j, p := range params {
		args[j] = p
	}
	_, err = io.WriteString(w, t.ti.Printf(i, args...))
	return err
}
