package script

import (
	"fmt"
	"regexp"
	"strings"
)

var varNameRx = regexp.MustCompile(`(\\*)\$(\w+)`)

// varEval expands $name references in s. Names found in vars are expanded
// recursively; names in terminalVars are substituted verbatim. A $ preceded
// by an odd number of backslashes is literal.
func varEval(s string, vars map[string]string, terminalVars map[string]string) (string, error) {
	var doVarEval func(string, map[string]bool) (string, error)

	doVarEval = func(s string, seenVars map[string]bool) (string, error) {
		mm := varNameRx.FindAllStringSubmatchIndex(s, -1)
		if len(mm) == 0 {
			return s, nil
		}

		out := s[:mm[0][0]]
		for i := 0; i < len(mm); i++ {
			if i > 0 {
				out += s[mm[i-1][1]:mm[i][0]]
			}
			nSlashes := mm[i][3] - mm[i][2]
			varName := s[mm[i][4]:mm[i][5]]

			out += strings.Repeat(`\`, nSlashes/2)
			if nSlashes%2 == 1 {
				out += "$" + varName
				continue
			}
			if seenVars[varName] {
				return "", fmt.Errorf("infinite recursion of variable $%s", varName)
			}
			if v, ok := vars[varName]; ok {
				seenVars[varName] = true
				expanded, err := doVarEval(v, seenVars)
				if err != nil {
					return "", err
				}
				delete(seenVars, varName)
				out += expanded
			} else if v, ok := terminalVars[varName]; ok {
				out += v
			} else {
				return "", fmt.Errorf("variable $%s is not defined", varName)
			}
		}
		out += s[mm[len(mm)-1][1]:]
		return out, nil
	}

	return doVarEval(s, map[string]bool{})
}
