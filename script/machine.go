// Package script is a small line-oriented cooperative scripting runtime.
//
// A Machine runs a program on the calling goroutine and exposes safe-point
// hooks in the spirit of a debug hook: a hook can ask to run before every
// command invocation (call), after it (return) and every Count statements
// (count). Hooks never run while another hook is running.
//
// The hook slot is the only Machine state that may be touched from other
// goroutines: Hook and SetHook are safe for concurrent use, everything else
// belongs to the goroutine running the program.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cortesi/termlog"
)

const maxDepth = 200

// Builtin implements a command in Go. The returned string becomes $_.
type Builtin func(m *Machine, args []string) (string, error)

// Error is a script failure annotated with its location.
type Error struct {
	Prog string
	Line int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Prog, e.Line, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitError requests termination of the script with a status code.
type ExitError struct {
	Code int
}

func (e ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// Machine executes scripts.
type Machine struct {
	Stdout io.Writer
	Log    termlog.TermLog

	hook   atomic.Pointer[Hook]
	ticks  int
	inHook bool

	builtins map[string]Builtin
	procs    map[string]*ProcDef
	vars     map[string]string
	frames   [][]string
	last     string
	prog     string
}

// New constructs a Machine with the core builtins registered.
func New(log termlog.TermLog) *Machine {
	m := &Machine{
		Stdout:   os.Stdout,
		Log:      log,
		builtins: map[string]Builtin{},
		procs:    map[string]*ProcDef{},
		vars:     map[string]string{},
	}
	m.Register("print", builtinPrint)
	m.Register("set", builtinSet)
	m.Register("sleep", builtinSleep)
	m.Register("exit", builtinExit)
	return m
}

// Register adds or replaces a builtin command.
func (m *Machine) Register(name string, fn Builtin) {
	m.builtins[name] = fn
}

// Hook returns the installed hook, or the zero Hook.
func (m *Machine) Hook() Hook {
	if h := m.hook.Load(); h != nil {
		return *h
	}
	return Hook{}
}

// SetHook installs h. A Hook with a nil Func removes the current hook.
func (m *Machine) SetHook(h Hook) {
	if h.Func == nil {
		m.hook.Store(nil)
		return
	}
	m.hook.Store(&h)
}

// Tick is an explicit safe point: it fires one count event.
func (m *Machine) Tick() error {
	return m.fire(EventCount)
}

func (m *Machine) fire(ev Event) error {
	if m.inHook {
		return nil
	}
	h := m.hook.Load()
	if h == nil || !h.Wants(ev) {
		return nil
	}
	if ev == EventCount {
		m.ticks++
		if m.ticks < h.Count {
			return nil
		}
		m.ticks = 0
	}
	m.inHook = true
	defer func() { m.inHook = false }()
	return h.Func(m, ev)
}

// HasProc reports whether a procedure is defined.
func (m *Machine) HasProc(name string) bool {
	_, ok := m.procs[name]
	return ok
}

// Var returns a variable's raw value.
func (m *Machine) Var(name string) (string, bool) {
	v, ok := m.vars[name]
	return v, ok
}

// SetVar assigns a variable.
func (m *Machine) SetVar(name, value string) {
	m.vars[name] = value
}

// Result returns $_, the result of the last completed command.
func (m *Machine) Result() string {
	return m.last
}

// RunFile parses and executes the script at path.
func (m *Machine) RunFile(path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading script %s: %w", path, err)
	}
	prog, err := Parse(path, string(text))
	if err != nil {
		return fmt.Errorf("failed to parse script %q: %w", path, err)
	}
	return m.Exec(prog)
}

// Exec runs a parsed program. Procedures it defines stay defined afterwards.
func (m *Machine) Exec(p *Program) error {
	prev := m.prog
	m.prog = p.Name
	defer func() { m.prog = prev }()
	return m.block(p.Body)
}

// CallProc invokes a defined procedure with positional arguments.
func (m *Machine) CallProc(name string, args ...string) error {
	if !m.HasProc(name) {
		return fmt.Errorf("procedure %q is not defined", name)
	}
	_, err := m.call(name, args)
	return err
}

func (m *Machine) block(body []Node) error {
	for _, n := range body {
		if err := m.fire(EventCount); err != nil {
			return m.wrap(n, err)
		}
		if err := m.node(n); err != nil {
			return m.wrap(n, err)
		}
	}
	return nil
}

func (m *Machine) wrap(n Node, err error) error {
	var se *Error
	var ee ExitError
	if errors.As(err, &se) || errors.As(err, &ee) {
		return err
	}
	return &Error{Prog: m.prog, Line: n.line(), Err: err}
}

func (m *Machine) node(n Node) error {
	switch n := n.(type) {
	case *ProcDef:
		if _, ok := m.builtins[n.Name]; ok {
			return fmt.Errorf("proc %s shadows a builtin", n.Name)
		}
		m.procs[n.Name] = n
	case *Repeat:
		cs, err := m.expandWord(n.Count)
		if err != nil {
			return err
		}
		count, err := strconv.Atoi(cs)
		if err != nil || count < 0 {
			return fmt.Errorf("invalid repeat count %q", cs)
		}
		for i := 0; i < count; i++ {
			if err := m.block(n.Body); err != nil {
				return err
			}
		}
	case *Command:
		words := make([]string, len(n.Words))
		for i, w := range n.Words {
			e, err := m.expandWord(w)
			if err != nil {
				return err
			}
			words[i] = e
		}
		if _, err := m.call(words[0], words[1:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) call(name string, args []string) (string, error) {
	if err := m.fire(EventCall); err != nil {
		return "", err
	}
	var (
		res string
		err error
	)
	if m.Log != nil {
		m.Log.SayAs("debug", "call %s %v", name, args)
	}
	if p, ok := m.procs[name]; ok {
		res, err = m.invoke(p, args)
	} else if b, ok := m.builtins[name]; ok {
		res, err = b(m, args)
	} else {
		err = fmt.Errorf("unknown command %q", name)
	}
	if err != nil {
		return "", err
	}
	m.last = res
	if err := m.fire(EventReturn); err != nil {
		return "", err
	}
	return res, nil
}

func (m *Machine) invoke(p *ProcDef, args []string) (string, error) {
	if len(m.frames) >= maxDepth {
		return "", fmt.Errorf("call depth exceeded in %s", p.Name)
	}
	m.frames = append(m.frames, args)
	defer func() { m.frames = m.frames[:len(m.frames)-1] }()
	if err := m.block(p.Body); err != nil {
		return "", err
	}
	return m.last, nil
}

func (m *Machine) expandWord(w string) (string, error) {
	if !strings.Contains(w, "$") {
		return w, nil
	}
	terminal := map[string]string{"_": m.last}
	if len(m.frames) > 0 {
		frame := m.frames[len(m.frames)-1]
		for i := 1; i <= 9; i++ {
			v := ""
			if i <= len(frame) {
				v = frame[i-1]
			}
			terminal[strconv.Itoa(i)] = v
		}
	}
	return varEval(w, m.vars, terminal)
}
