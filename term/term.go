// Package term toggles terminal line discipline flags.
package term

import (
	"fmt"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	xterm "golang.org/x/term"
)

// State is a saved terminal state.
type State = xterm.State

func updateTermios(fd int, update func(t *unix.Termios)) error {
	t, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return &Error{"tcgetattr", err}
	}
	update(t)
	// applied after pending output drains
	if err := unix.IoctlSetTermios(fd, ioctlSetTermiosDrain, t); err != nil {
		return &Error{"tcsetattr", err}
	}
	return nil
}

// SetCanon turns canonical (line buffered) input on or off.
func SetCanon(fd int, on bool) error {
	return updateTermios(fd, func(t *unix.Termios) {
		if on {
			t.Lflag |= unix.ICANON
		} else {
			t.Lflag &^= unix.ICANON
		}
	})
}

// SetEcho turns input echo on or off.
func SetEcho(fd int, on bool) error {
	return updateTermios(fd, func(t *unix.Termios) {
		if on {
			t.Lflag |= unix.ECHO
		} else {
			t.Lflag &^= unix.ECHO
		}
	})
}

// MakeRaw puts the terminal into raw mode and returns the previous state.
func MakeRaw(fd int) (*State, error) {
	st, err := xterm.MakeRaw(fd)
	if err != nil {
		return nil, &Error{"makeraw", err}
	}
	return st, nil
}

// Restore restores a state saved by MakeRaw.
func Restore(fd int, st *State) error {
	if err := xterm.Restore(fd, st); err != nil {
		return &Error{"restore", err}
	}
	return nil
}

// Size returns the terminal width and height in cells.
func Size(fd int) (int, int, error) {
	w, h, err := xterm.GetSize(fd)
	if err != nil {
		return 0, 0, &Error{"size", err}
	}
	return w, h, nil
}

// IsTerminal reports whether fd is a terminal.
func IsTerminal(fd int) bool {
	return isatty.IsTerminal(uintptr(fd))
}

// Error is a failed terminal operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
