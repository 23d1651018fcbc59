package conf

import (
	"fmt"
	"time"

	"github.com/dottedmag/posixrt/sigtab"
)

// Signal is a signal name checked against the platform table.
type Signal struct {
	Name   string
	Number int
}

func (s *Signal) UnmarshalText(text []byte) error {
	n, err := sigtab.Default().Number(string(text))
	if err != nil {
		return err
	}
	s.Name = string(text)
	s.Number = n
	return nil
}

// Duration is a time.Duration written as "250ms", "2s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Dispatch tunes the signal bridge.
type Dispatch struct {
	Queue        int      `toml:"queue"`        // pending queue capacity
	OnError      string   `toml:"onerror"`      // "log" or "abort"
	RaiseTimeout Duration `toml:"raisetimeout"` // how long raise waits for delivery
}

// A Trap is a disposition installed before the script starts
type Trap struct {
	Signal Signal `toml:"signal"`
	Action string `toml:"action"` // "ignore", "cdefault" or "default"
}

// Config represents a complete configuration
type Config struct {
	Runtime  string   `toml:"runtime"` // runtime directory, overrides argv0 lookup
	Script   string   `toml:"script"`  // script to run instead of core.psx
	Dispatch Dispatch `toml:"dispatch"`
	Traps    []Trap   `toml:"trap"`
}

// TrapSignals returns the names of all trapped signals
func TrapSignals(c *Config) []string {
	var out []string
	for _, t := range c.Traps {
		out = append(out, t.Signal.Name)
	}
	return out
}
