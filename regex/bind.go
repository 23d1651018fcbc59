package regex

import (
	"fmt"
	"strconv"

	"github.com/dottedmag/posixrt/script"
)

type binding struct {
	compiled map[string]*Pattern
}

// Bind registers the pattern builtins on m:
//
//	compile NAME EXPR [FLAG...]   keeps a compiled pattern under NAME
//	test PATTERN SUBJECT [OFFSET]  "true" or "false"; OFFSET counts from 0
//	match PATTERN SUBJECT [START]  START counts from 1
//
// PATTERN is the NAME of a compiled pattern or an expression. match leaves
// the whole match in $_ and in $match0, capture groups in $match1 to
// $match9. Without a match $_ is empty and the match variables are
// cleared.
func Bind(m *script.Machine) {
	b := &binding{compiled: map[string]*Pattern{}}
	m.Register("compile", b.builtinCompile)
	m.Register("test", b.builtinTest)
	m.Register("match", b.builtinMatch)
}

func (b *binding) pattern(s string) (*Pattern, error) {
	if p, ok := b.compiled[s]; ok {
		return p, nil
	}
	return Compile(s)
}

func (b *binding) builtinCompile(m *script.Machine, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("compile: expected a name and an expression")
	}
	var flags []Flag
	for _, a := range args[2:] {
		f, err := ParseFlag(a)
		if err != nil {
			return "", fmt.Errorf("compile: %w", err)
		}
		flags = append(flags, f)
	}
	p, err := Compile(args[1], flags...)
	if err != nil {
		return "", fmt.Errorf("compile: %w", err)
	}
	b.compiled[args[0]] = p
	return args[0], nil
}

func position(cmd string, args []string, def int) (int, error) {
	if len(args) < 3 {
		return def, nil
	}
	if len(args) > 3 {
		return 0, fmt.Errorf("%s: too many arguments", cmd)
	}
	n, err := strconv.Atoi(args[2])
	if err != nil {
		return 0, fmt.Errorf("%s: invalid position %q", cmd, args[2])
	}
	return n, nil
}

func (b *binding) builtinTest(m *script.Machine, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("test: expected a pattern and a subject")
	}
	offset, err := position("test", args, 0)
	if err != nil {
		return "", err
	}
	p, err := b.pattern(args[0])
	if err != nil {
		return "", fmt.Errorf("test: %w", err)
	}
	return strconv.FormatBool(p.Test(args[1], offset)), nil
}

const matchVars = 10

func (b *binding) builtinMatch(m *script.Machine, args []string) (string, error) {
	if len(args) < 2 {
		return "", fmt.Errorf("match: expected a pattern and a subject")
	}
	start, err := position("match", args, 1)
	if err != nil {
		return "", err
	}
	p, err := b.pattern(args[0])
	if err != nil {
		return "", fmt.Errorf("match: %w", err)
	}
	groups, _ := p.Match(args[1], start-1)
	for i := 0; i < matchVars; i++ {
		v := ""
		if i < len(groups) {
			v = groups[i]
		}
		m.SetVar("match"+strconv.Itoa(i), v)
	}
	if len(groups) == 0 {
		return "", nil
	}
	return groups[0], nil
}
