package proc

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/cortesi/termlog"
)

// ProcError is a process error, possibly containing command output
type ProcError struct {
	shorttext string
	Output    string
	Status    Status
}

func (p ProcError) Error() string {
	return p.shorttext
}

func logOutput(wg *sync.WaitGroup, fp io.ReadCloser, out func(string, ...interface{})) {
	defer wg.Done()
	r := bufio.NewReader(fp)
	for {
		line, _, err := r.ReadLine()
		if err != nil {
			return
		}
		out("%s", string(line))
	}
}

// Run runs a command to completion, sending output to log
func Run(argv []string, dir string, log termlog.Stream) error {
	if len(argv) == 0 {
		return fmt.Errorf("run: empty command")
	}
	log.Header()
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir

	stdo, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stde, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	var errOutput strings.Builder
	var mu sync.Mutex
	warn := func(format string, args ...interface{}) {
		mu.Lock()
		fmt.Fprintf(&errOutput, format+"\n", args...)
		mu.Unlock()
		log.Warn(format, args...)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &OSError{"run", err}
	}
	wg := sync.WaitGroup{}
	wg.Add(2)
	go logOutput(&wg, stdo, log.Say)
	go logOutput(&wg, stde, warn)
	wg.Wait()

	err = cmd.Wait()
	if err != nil {
		log.Shout("%s", err)
		pe := ProcError{shorttext: err.Error(), Output: errOutput.String()}
		if ee, ok := err.(*exec.ExitError); ok {
			pe.Status = exitStatus(ee)
		}
		return pe
	}
	log.Notice(">> done (%s)", time.Since(start))
	return nil
}

func exitStatus(ee *exec.ExitError) Status {
	st := Status{Pid: ee.Pid(), Code: ee.ExitCode()}
	if ws, ok := ee.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		st.Signaled = true
		st.Code = int(ws.Signal())
	}
	return st
}
