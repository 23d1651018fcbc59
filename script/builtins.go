package script

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// sleepSlice is the longest stretch sleep runs without a safe point.
const sleepSlice = 10 * time.Millisecond

func builtinPrint(m *Machine, args []string) (string, error) {
	s := strings.Join(args, " ")
	_, err := fmt.Fprintln(m.Stdout, s)
	return s, err
}

func builtinSet(m *Machine, args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("set: missing variable name")
	}
	v := strings.Join(args[1:], " ")
	m.vars[args[0]] = v
	return v, nil
}

func builtinSleep(m *Machine, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("sleep: expected a duration")
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return "", fmt.Errorf("sleep: %w", err)
	}
	deadline := time.Now().Add(d)
	for {
		left := time.Until(deadline)
		if left <= 0 {
			return "", nil
		}
		time.Sleep(min(left, sleepSlice))
		if err := m.Tick(); err != nil {
			return "", err
		}
	}
}

func builtinExit(m *Machine, args []string) (string, error) {
	code := 0
	if len(args) > 0 {
		c, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("exit: invalid status %q", args[0])
		}
		code = c
	}
	return "", ExitError{code}
}
