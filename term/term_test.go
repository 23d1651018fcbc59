package term

import (
	"bytes"
	"os"
	"strconv"
	"testing"

	"github.com/cortesi/termlog"
	"github.com/dottedmag/posixrt/script"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestNotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "plain")
	require.NoError(t, err)
	defer f.Close()
	fd := int(f.Fd())

	require.False(t, IsTerminal(fd))

	for name, fn := range map[string]func() error{
		"canon": func() error { return SetCanon(fd, false) },
		"echo":  func() error { return SetEcho(fd, true) },
		"size":  func() error { _, _, err := Size(fd); return err },
		"raw":   func() error { _, err := MakeRaw(fd); return err },
	} {
		t.Run(name, func(t *testing.T) {
			err := fn()
			var te *Error
			require.ErrorAs(t, err, &te)
		})
	}
}

func openTTY(t *testing.T) *os.File {
	f, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		t.Skip("no controlling terminal")
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestToggleFlags(t *testing.T) {
	f := openTTY(t)
	fd := int(f.Fd())

	st, err := MakeRaw(fd)
	require.NoError(t, err)
	defer Restore(fd, st)

	require.NoError(t, SetEcho(fd, true))
	tio, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	require.NoError(t, err)
	require.NotZero(t, tio.Lflag&unix.ECHO)

	require.NoError(t, SetCanon(fd, true))
	require.NoError(t, SetCanon(fd, false))
	tio, err = unix.IoctlGetTermios(fd, ioctlGetTermios)
	require.NoError(t, err)
	require.Zero(t, tio.Lflag&unix.ICANON)
}

func TestParseSwitch(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "1": true, "off": false, "false": false} {
		got, err := parseSwitch(in)
		require.NoError(t, err)
		if got != want {
			t.Errorf("%s: expected %v", in, want)
		}
	}
	_, err := parseSwitch("maybe")
	require.Error(t, err)
}

func TestBind(t *testing.T) {
	log := termlog.NewLog()
	log.Quiet()
	m := script.New(log)
	Bind(m)
	out := &bytes.Buffer{}
	m.Stdout = out

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	prog, err := script.Parse(t.Name(), "isatty "+strconv.Itoa(int(r.Fd()))+"\nprint $_\n")
	require.NoError(t, err)
	require.NoError(t, m.Exec(prog))
	if diff := cmp.Diff("false\n", out.String()); diff != "" {
		t.Error(diff)
	}

	prog, err = script.Parse(t.Name(), "setecho sideways\n")
	require.NoError(t, err)
	require.Error(t, m.Exec(prog))
}

func TestLookupCap(t *testing.T) {
	for _, tt := range []struct {
		name string
		kind capKind
		err  string
	}{
		{"am", capBool, ""},
		{"auto_right_margin", capBool, ""},
		{"cols", capNum, ""},
		{"cup", capString, ""},
		{"cols", capString, "cols is not a string capability"},
		{"cup", capBool, "cup is not a boolean capability"},
		{"nosuchcap", capNum, "capability not found: nosuchcap"},
	} {
		_, err := lookupCap(tt.name, tt.kind)
		if tt.err == "" {
			require.NoError(t, err, tt.name)
		} else {
			require.EqualError(t, err, tt.err)
		}
	}
}

func loadXterm(t *testing.T) *Terminfo {
	ti, err := LoadTerminfo("xterm")
	if err != nil {
		t.Skipf("no xterm terminfo entry: %v", err)
	}
	return ti
}

func TestTerminfo(t *testing.T) {
	ti := loadXterm(t)

	am, err := ti.Flag("am")
	require.NoError(t, err)
	require.True(t, am)

	cols, err := ti.Num("cols")
	require.NoError(t, err)
	require.Equal(t, 80, cols)

	cl, err := ti.Str("clear")
	require.NoError(t, err)
	require.Equal(t, "\x1b[H\x1b[2J", cl)

	var buf bytes.Buffer
	require.NoError(t, ti.Put(&buf, "cup", 2, 4))
	require.Equal(t, "\x1b[3;5H", buf.String())

	_, err = ti.Num("cup")
	require.Error(t, err)
	require.Error(t, ti.Put(&buf, "cup", 1, 2, 3, 4, 5, 6, 7, 8, 9, 10))
}

func TestBindTerminfo(t *testing.T) {
	loadXterm(t)
	log := termlog.NewLog()
	log.Quiet()
	m := script.New(log)
	Bind(m)
	out := &bytes.Buffer{}
	m.Stdout = out

	prog, err := script.Parse(t.Name(), `
tinit xterm
tigetnum cols
print $_
tigetflag am
print $_
putcap cup 0 0
`)
	require.NoError(t, err)
	require.NoError(t, m.Exec(prog))
	if diff := cmp.Diff("80\ntrue\n\x1b[1;1H", out.String()); diff != "" {
		t.Error(diff)
	}

	for _, text := range []string{"tigetnum cup", "tigetstr", "putcap cup x", "tinit posixrt-no-such-term"} {
		prog, err := script.Parse(t.Name(), text)
		require.NoError(t, err)
		require.Error(t, m.Exec(prog), text)
	}
}

func TestRawmodeOffWithoutOn(t *testing.T) {
	log := termlog.NewLog()
	log.Quiet()
	m := script.New(log)
	Bind(m)
	prog, err := script.Parse(t.Name(), "rawmode off\nrawmode sideways\n")
	require.NoError(t, err)
	err = m.Exec(prog)
	require.ErrorContains(t, err, "rawmode: expected on or off")
	var se *script.Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, 2, se.Line)
}
