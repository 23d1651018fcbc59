package script

import (
	"fmt"
	"strings"
)

// Node is one parsed statement.
type Node interface {
	line() int
}

// Command invokes a procedure or builtin.
type Command struct {
	Line  int
	Words []string
}

// ProcDef defines a procedure when executed.
type ProcDef struct {
	Line int
	Name string
	Body []Node
}

// Repeat runs Body Count times. Count is expanded at run time.
type Repeat struct {
	Line  int
	Count string
	Body  []Node
}

func (c *Command) line() int { return c.Line }
func (p *ProcDef) line() int { return p.Line }
func (r *Repeat) line() int  { return r.Line }

// Program is a parsed script.
type Program struct {
	Name string
	Body []Node
}

type openBlock struct {
	line int
	body *[]Node
}

// Parse parses script text. name is used in error messages only.
func Parse(name string, text string) (*Program, error) {
	prog := &Program{Name: name}
	stack := []openBlock{{0, &prog.Body}}

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		words, err := splitWords(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		top := stack[len(stack)-1].body

		switch words[0] {
		case "proc":
			if len(words) != 2 {
				return nil, fmt.Errorf("%s:%d: proc takes exactly one name", name, lineNo)
			}
			p := &ProcDef{Line: lineNo, Name: words[1]}
			*top = append(*top, p)
			stack = append(stack, openBlock{lineNo, &p.Body})
		case "repeat":
			if len(words) != 2 {
				return nil, fmt.Errorf("%s:%d: repeat takes exactly one count", name, lineNo)
			}
			r := &Repeat{Line: lineNo, Count: words[1]}
			*top = append(*top, r)
			stack = append(stack, openBlock{lineNo, &r.Body})
		case "end":
			if len(words) != 1 {
				return nil, fmt.Errorf("%s:%d: unexpected words after end", name, lineNo)
			}
			if len(stack) == 1 {
				return nil, fmt.Errorf("%s:%d: end without block", name, lineNo)
			}
			stack = stack[:len(stack)-1]
		default:
			*top = append(*top, &Command{Line: lineNo, Words: words})
		}
	}
	if len(stack) > 1 {
		return nil, fmt.Errorf("%s:%d: block is not closed", name, stack[len(stack)-1].line)
	}
	return prog, nil
}

// splitWords splits on whitespace. Double quotes group words; \" inside
// quotes is a literal quote. Other backslashes are kept for expansion.
func splitWords(s string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		inQuote bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote && c == '\\' && i+1 < len(s) && s[i+1] == '"':
			cur.WriteByte('"')
			i++
		case c == '"':
			inQuote = !inQuote
			inWord = true
		case !inQuote && (c == ' ' || c == '\t'):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
