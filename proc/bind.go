package proc

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dottedmag/posixrt/script"
	"github.com/fatih/color"
)

// Bind registers the process builtins on m:
//
//	spawn PROG ARG...    pid of the child
//	exec PROG ARG...
//	pipe RVAR WVAR       stores both descriptors in variables
//	dup2 OLD NEW
//	close FD
//	waitpid PID          exit code, 128+N if killed by signal N
//	run PROG ARG...      output goes to the log, fails on non-zero exit
func Bind(m *script.Machine) {
	m.Register("spawn", builtinSpawn)
	m.Register("exec", builtinExec)
	m.Register("pipe", builtinPipe)
	m.Register("dup2", builtinDup2)
	m.Register("close", builtinClose)
	m.Register("waitpid", builtinWaitpid)
	m.Register("run", builtinRun)
}

func atoi(cmd, what, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid %s %q", cmd, what, s)
	}
	return n, nil
}

func builtinSpawn(m *script.Machine, args []string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	pid, err := Spawn(args, dir)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(pid), nil
}

func builtinExec(m *script.Machine, args []string) (string, error) {
	return "", Exec(args)
}

func builtinPipe(m *script.Machine, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("pipe: expected two variable names")
	}
	r, w, err := Pipe()
	if err != nil {
		return "", err
	}
	m.SetVar(args[0], strconv.Itoa(r))
	m.SetVar(args[1], strconv.Itoa(w))
	return fmt.Sprintf("%d %d", r, w), nil
}

func builtinDup2(m *script.Machine, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("dup2: expected two descriptors")
	}
	oldfd, err := atoi("dup2", "descriptor", args[0])
	if err != nil {
		return "", err
	}
	newfd, err := atoi("dup2", "descriptor", args[1])
	if err != nil {
		return "", err
	}
	return "", Dup2(oldfd, newfd)
}

func builtinClose(m *script.Machine, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("close: expected a descriptor")
	}
	fd, err := atoi("close", "descriptor", args[0])
	if err != nil {
		return "", err
	}
	return "", Close(fd)
}

func builtinWaitpid(m *script.Machine, args []string) (string, error) {
	pid := -1
	if len(args) > 0 {
		var err error
		if pid, err = atoi("waitpid", "pid", args[0]); err != nil {
			return "", err
		}
	}
	st, err := Waitpid(pid)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(st.ShellCode()), nil
}

func builtinRun(m *script.Machine, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("run: expected a command")
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	err = Run(args, dir, m.Log.Stream(niceHeader("run: ", strings.Join(args, " "))))
	if err != nil {
		return "", err
	}
	return "0", nil
}

var headerColor = color.New(color.FgCyan).SprintFunc()

func niceHeader(preamble string, command string) string {
	return headerColor(preamble) + strings.TrimSpace(command)
}
