package proc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cortesi/termlog"
	"github.com/dottedmag/posixrt/script"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func quietLog() termlog.TermLog {
	log := termlog.NewLog()
	log.Quiet()
	return log
}

func TestPipeDup2(t *testing.T) {
	r, w, err := Pipe()
	require.NoError(t, err)
	defer Close(r)

	// Move the write end somewhere else and write through the copy.
	w2, err := unix.Dup(w)
	require.NoError(t, err)
	require.NoError(t, Dup2(w, w2))
	require.NoError(t, Close(w))

	_, err = unix.Write(w2, []byte("hello"))
	require.NoError(t, err)
	require.NoError(t, Close(w2))

	buf := make([]byte, 16)
	n, err := unix.Read(r, buf)
	require.NoError(t, err)
	if diff := cmp.Diff("hello", string(buf[:n])); diff != "" {
		t.Error(diff)
	}
}

func TestDup2Same(t *testing.T) {
	r, w, err := Pipe()
	require.NoError(t, err)
	defer Close(r)
	defer Close(w)
	require.NoError(t, Dup2(r, r))
}

func TestCloseBad(t *testing.T) {
	err := Close(-1)
	var oe *OSError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OSError, got %v", err)
	}
	if !errors.Is(err, unix.EBADF) {
		t.Errorf("expected EBADF, got %v", err)
	}
}

var spawnTests = []struct {
	argv   []string
	status Status
}{
	{[]string{"true"}, Status{Code: 0}},
	{[]string{"false"}, Status{Code: 1}},
	{[]string{"sh", "-c", "exit 7"}, Status{Code: 7}},
	{[]string{"sh", "-c", "kill -TERM $$"}, Status{Signaled: true, Code: int(unix.SIGTERM)}},
}

func TestSpawnWaitpid(t *testing.T) {
	for _, tt := range spawnTests {
		t.Run(tt.argv[0], func(t *testing.T) {
			pid, err := Spawn(tt.argv, "")
			require.NoError(t, err)
			st, err := Waitpid(pid)
			require.NoError(t, err)
			tt.status.Pid = pid
			if diff := cmp.Diff(tt.status, st); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestSpawnMissing(t *testing.T) {
	_, err := Spawn([]string{"posixrt-no-such-command"}, "")
	require.Error(t, err)
	_, err = Spawn(nil, "")
	require.Error(t, err)
}

func TestShellCode(t *testing.T) {
	if got := (Status{Signaled: true, Code: 9}).ShellCode(); got != 137 {
		t.Errorf("expected 137, got %d", got)
	}
	if got := (Status{Code: 3}).ShellCode(); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestRun(t *testing.T) {
	log := quietLog()
	require.NoError(t, Run([]string{"sh", "-c", "echo out; echo err >&2"}, "", log.Stream("test")))

	err := Run([]string{"sh", "-c", "echo broken >&2; exit 3"}, "", log.Stream("test"))
	var pe ProcError
	require.ErrorAs(t, err, &pe)
	if diff := cmp.Diff("broken\n", pe.Output); diff != "" {
		t.Error(diff)
	}
	if pe.Status.Code != 3 || pe.Status.Signaled {
		t.Errorf("unexpected status %+v", pe.Status)
	}
}

func runScript(t *testing.T, text string) (string, error) {
	t.Helper()
	m := script.New(quietLog())
	Bind(m)
	out := &bytes.Buffer{}
	m.Stdout = out
	prog, err := script.Parse(t.Name(), text)
	require.NoError(t, err)
	err = m.Exec(prog)
	return out.String(), err
}

func TestBind(t *testing.T) {
	out, err := runScript(t, `
spawn sh -c "exit 4"
waitpid $_
print status $_
pipe r w
close $w
close $r
run true
print ran $_
`)
	require.NoError(t, err)
	if diff := cmp.Diff("status 4\nran 0\n", out); diff != "" {
		t.Error(diff)
	}
}

func TestBindErrors(t *testing.T) {
	for _, text := range []string{
		"close nope",
		"dup2 1",
		"pipe onlyone",
		"run false",
		"spawn",
		"waitpid x",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := runScript(t, text)
			require.Error(t, err)
		})
	}
}
