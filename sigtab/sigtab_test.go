package sigtab

import (
	"errors"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	tab := Default()
	sigs := tab.Signals()
	if len(sigs) == 0 {
		t.Fatal("empty signal table")
	}
	for _, d := range sigs {
		n, err := tab.Number(d.Name)
		if err != nil {
			t.Errorf("%s: %s", d.Name, err)
			continue
		}
		if n != d.Number {
			t.Errorf("%s: got %d, want %d", d.Name, n, d.Number)
		}
		name, err := tab.Name(d.Number)
		if err != nil {
			t.Errorf("%d: %s", d.Number, err)
			continue
		}
		if name != d.Name {
			t.Errorf("%d: got %s, want %s", d.Number, name, d.Name)
		}
	}
}

var knownTests = []struct {
	name string
	num  syscall.Signal
}{
	{"SIGHUP", syscall.SIGHUP},
	{"SIGINT", syscall.SIGINT},
	{"SIGKILL", syscall.SIGKILL},
	{"SIGTERM", syscall.SIGTERM},
	{"SIGUSR1", syscall.SIGUSR1},
	{"SIGUSR2", syscall.SIGUSR2},
	{"SIGWINCH", syscall.SIGWINCH},
	{"SIGALRM", syscall.SIGALRM},
}

func TestKnown(t *testing.T) {
	tab := Default()
	for _, tt := range knownTests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tab.Number(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(int(tt.num), n); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestAlias(t *testing.T) {
	tab := Default()
	n, err := tab.Number("SIGIOT")
	if err != nil {
		t.Fatal(err)
	}
	if n != int(syscall.SIGABRT) {
		t.Errorf("SIGIOT resolved to %d", n)
	}
	name, err := tab.Name(n)
	if err != nil {
		t.Fatal(err)
	}
	if name != "SIGABRT" {
		t.Errorf("canonical name for %d is %s", n, name)
	}
}

func TestUnknown(t *testing.T) {
	tab := Default()
	for _, name := range []string{"", "INT", "sigint", "SIGFOO", "test"} {
		if _, err := tab.Number(name); !errors.Is(err, ErrUnknownSignal) {
			t.Errorf("%q: expected ErrUnknownSignal, got %v", name, err)
		}
	}
	for _, n := range []int{-1, 0, tab.Max() + 1} {
		if _, err := tab.Name(n); !errors.Is(err, ErrUnknownSignal) {
			t.Errorf("%d: expected ErrUnknownSignal, got %v", n, err)
		}
	}
}

func TestMax(t *testing.T) {
	tab := Default()
	for _, d := range tab.Signals() {
		if d.Number > tab.Max() {
			t.Errorf("%s (%d) above Max %d", d.Name, d.Number, tab.Max())
		}
	}
	if tab.Max() < int(syscall.SIGUSR2) {
		t.Errorf("Max %d below SIGUSR2", tab.Max())
	}
}
