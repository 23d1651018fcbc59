// Package proc wraps process and file descriptor primitives.
//
// Go cannot fork a running program, so Spawn starts a new process image
// directly. Errors from the operating system are returned as *OSError and
// carry the platform error text.
package proc

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// OSError is a failed system call.
type OSError struct {
	Op  string
	Err error
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *OSError) Unwrap() error {
	return e.Err
}

// Status is the result of Waitpid.
type Status struct {
	Pid      int
	Signaled bool
	// Code is the exit status, or the terminating signal if Signaled.
	Code int
}

// ShellCode folds a status into one shell-style number.
func (s Status) ShellCode() int {
	if s.Signaled {
		return 128 + s.Code
	}
	return s.Code
}

func lookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return path, nil
}

// Spawn starts argv[0] from PATH with the current standard streams and
// returns its pid. The child must be reaped with Waitpid.
func Spawn(argv []string, dir string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("spawn: empty command")
	}
	path, err := lookPath(argv[0])
	if err != nil {
		return 0, err
	}
	p, err := os.StartProcess(path, argv, &os.ProcAttr{
		Dir:   dir,
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	})
	if err != nil {
		return 0, &OSError{"spawn", err}
	}
	pid := p.Pid
	if err := p.Release(); err != nil {
		return 0, &OSError{"spawn", err}
	}
	return pid, nil
}

// Exec replaces the current process image. It only returns on error.
func Exec(argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("exec: empty command")
	}
	path, err := lookPath(argv[0])
	if err != nil {
		return err
	}
	if err := unix.Exec(path, argv, os.Environ()); err != nil {
		return &OSError{"exec", err}
	}
	return nil
}

// Pipe returns the read and write ends of a new pipe.
func Pipe() (int, int, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, 0, &OSError{"pipe", err}
	}
	return fds[0], fds[1], nil
}

// Dup2 makes newfd a copy of oldfd.
func Dup2(oldfd, newfd int) error {
	if err := dup2(oldfd, newfd); err != nil {
		return &OSError{"dup2", err}
	}
	return nil
}

// Close closes a raw descriptor.
func Close(fd int) error {
	if err := unix.Close(fd); err != nil {
		return &OSError{"close", err}
	}
	return nil
}

// Waitpid waits for a child. A pid of -1 waits for any child.
func Waitpid(pid int) (Status, error) {
	var ws unix.WaitStatus
	for {
		wpid, err := unix.Wait4(pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return Status{}, &OSError{"waitpid", err}
		}
		if ws.Signaled() {
			return Status{Pid: wpid, Signaled: true, Code: int(ws.Signal())}, nil
		}
		return Status{Pid: wpid, Code: ws.ExitStatus()}, nil
	}
}
