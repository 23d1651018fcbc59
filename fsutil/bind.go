package fsutil

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dottedmag/posixrt/script"
)

// Bind registers the filesystem builtins on m:
//
//	getcwd
//	chdir DIR
//	exists PATH           "true" if PATH is a regular file
//	ls [DIR] [PROC]       calls PROC for each entry, or returns them sorted
//	glob PATTERN... [!EXCLUDE...]
//	hostname
func Bind(m *script.Machine) {
	m.Register("getcwd", func(*script.Machine, []string) (string, error) {
		return Getcwd()
	})
	m.Register("chdir", builtinChdir)
	m.Register("exists", builtinExists)
	m.Register("ls", builtinLs)
	m.Register("glob", builtinGlob)
	m.Register("hostname", func(*script.Machine, []string) (string, error) {
		return Hostname()
	})
}

func builtinChdir(m *script.Machine, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("chdir: expected a directory")
	}
	return "", Chdir(args[0])
}

func builtinExists(m *script.Machine, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("exists: expected a path")
	}
	return fmt.Sprint(FileExists(args[0])), nil
}

func builtinLs(m *script.Machine, args []string) (string, error) {
	dir, proc := ".", ""
	switch len(args) {
	case 0:
	case 1:
		dir = args[0]
	case 2:
		dir, proc = args[0], args[1]
	default:
		return "", fmt.Errorf("ls: too many arguments")
	}
	it, err := OpenDir(dir)
	if err != nil {
		return "", err
	}
	defer it.Close()

	var names []string
	for {
		name, ok, err := it.Next()
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
		if proc == "" {
			names = append(names, name)
			continue
		}
		if err := m.CallProc(proc, name); err != nil {
			return "", err
		}
	}
	sort.Strings(names)
	return strings.Join(names, " "), nil
}

func builtinGlob(m *script.Machine, args []string) (string, error) {
	var includes []string
	excludes := append([]string{}, CommonExcludes...)
	for _, a := range args {
		if strings.HasPrefix(a, "!") {
			excludes = append(excludes, a[1:])
		} else {
			includes = append(includes, a)
		}
	}
	if len(includes) == 0 {
		return "", fmt.Errorf("glob: expected a pattern")
	}
	ret, err := Glob(".", includes, excludes)
	if err != nil {
		return "", err
	}
	sort.Strings(ret)
	return strings.Join(ret, " "), nil
}
