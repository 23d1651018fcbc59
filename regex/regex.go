// Package regex compiles patterns for scripts and matches them against
// subjects.
package regex

import (
	"fmt"
	"regexp"
	"strings"
)

// Flag adjusts how a pattern is compiled.
type Flag int

const (
	Caseless Flag = 1 << iota
	Multiline
	DotAll
	Ungreedy
	Anchored
)

var flagNames = map[string]Flag{
	"caseless":  Caseless,
	"multiline": Multiline,
	"dotall":    DotAll,
	"ungreedy":  Ungreedy,
	"anchored":  Anchored,
}

// ParseFlag parses a flag name such as "caseless".
func ParseFlag(s string) (Flag, error) {
	f, ok := flagNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown pattern flag %q", s)
	}
	return f, nil
}

// Pattern is a compiled regular expression.
type Pattern struct {
	re *regexp.Regexp
}

// Compile compiles expr with flags.
func Compile(expr string, flags ...Flag) (*Pattern, error) {
	var all Flag
	for _, f := range flags {
		all |= f
	}
	inline := ""
	for _, f := range []struct {
		flag Flag
		c    string
	}{{Caseless, "i"}, {Multiline, "m"}, {DotAll, "s"}, {Ungreedy, "U"}} {
		if all&f.flag != 0 {
			inline += f.c
		}
	}
	src := expr
	if all&Anchored != 0 {
		src = `\A(?:` + src + `)`
	}
	if inline != "" {
		src = "(?" + inline + ")" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("could not compile pattern %q: %w", expr, err)
	}
	return &Pattern{re}, nil
}

func (p *Pattern) String() string {
	return p.re.String()
}

// NumGroups is the number of capture groups.
func (p *Pattern) NumGroups() int {
	return p.re.NumSubexp()
}

func clip(subject string, offset int) (string, bool) {
	if offset < 0 || offset > len(subject) {
		return "", false
	}
	return subject[offset:], true
}

// Test reports whether the pattern matches subject at or after byte
// offset.
func (p *Pattern) Test(subject string, offset int) bool {
	s, ok := clip(subject, offset)
	return ok && p.re.MatchString(s)
}

// Match returns the whole match followed by each capture group, searching
// from byte offset. Groups that did not take part are empty. ok is false
// when nothing matched.
func (p *Pattern) Match(subject string, offset int) (groups []string, ok bool) {
	s, ok := clip(subject, offset)
	if !ok {
		return nil, false
	}
	m := p.re.FindStringSubmatch(s)
	if m == nil {
		return nil, false
	}
	return m, true
}
