package conf

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"golang.org/x/exp/maps"
)

// Parse parses a string, and returns a completed Config
func Parse(name string, text string) (*Config, error) {
	var c Config

	meta, err := toml.Decode(text, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", name, err)
	}
	undecodedKeys := map[string]bool{}
	for _, k := range meta.Undecoded() {
		undecodedKeys[k.String()] = true
	}
	if len(undecodedKeys) > 0 {
		ks := maps.Keys(undecodedKeys)
		sort.Strings(ks)
		return nil, fmt.Errorf("unexpected keys in config %q: %v", name, ks)
	}
	if c.Dispatch.Queue < 0 {
		return nil, fmt.Errorf("config %q: queue must not be negative", name)
	}
	switch c.Dispatch.OnError {
	case "", "log", "abort":
	default:
		return nil, fmt.Errorf("config %q: onerror must be log or abort, not %q", name, c.Dispatch.OnError)
	}
	for _, t := range c.Traps {
		switch t.Action {
		case "ignore", "cdefault", "default":
		default:
			return nil, fmt.Errorf("config %q: trap %s: unknown action %q", name, t.Signal.Name, t.Action)
		}
	}
	return &c, nil
}
