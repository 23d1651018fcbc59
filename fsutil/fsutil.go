// Package fsutil holds the filesystem helpers exposed to scripts.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cortesi/moddwatch"
)

// CommonExcludes is a list of commonly excluded files suitable for passing in
// the excludes parameter to Glob - includes repo directories, temporary
// files, and so forth.
var CommonExcludes = []string{
	// VCS
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/.bzr/**",

	// OSX
	"**/.DS_Store/**",

	// Temporary files
	"**.tmp",
	"**~",
	"**#",
	"**.bak",
	"**.swp",
}

// Getcwd returns the working directory.
func Getcwd() (string, error) {
	return os.Getwd()
}

// Chdir changes the working directory.
func Chdir(dir string) error {
	return os.Chdir(dir)
}

// FileExists reports whether path names a regular file. Any failure to
// stat the path counts as absent.
func FileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Hostname returns the host name reported by the kernel.
func Hostname() (string, error) {
	return os.Hostname()
}

// Glob lists files under root matching includes and none of excludes.
// Patterns use doublestar syntax. Returned paths are relative to root and
// slash separated.
func Glob(root string, includes, excludes []string) ([]string, error) {
	ret, err := moddwatch.List(root, includes, excludes)
	if err != nil {
		return nil, fmt.Errorf("glob %v: %w", includes, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	for i, p := range ret {
		if filepath.IsAbs(p) {
			if p, err = filepath.Rel(absRoot, p); err != nil {
				return nil, err
			}
		}
		ret[i] = filepath.ToSlash(filepath.Clean(p))
	}
	return ret, nil
}

// DirIter lazily yields the names in a directory, without "." and "..".
type DirIter struct {
	f   *os.File
	buf []string
}

// OpenDir starts iterating dir.
func OpenDir(dir string) (*DirIter, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	return &DirIter{f: f}, nil
}

const readBatch = 64

// Next returns the next entry name. ok is false once the directory is
// exhausted or the iterator is closed.
func (d *DirIter) Next() (name string, ok bool, err error) {
	if d.f == nil {
		return "", false, nil
	}
	if len(d.buf) == 0 {
		d.buf, err = d.f.Readdirnames(readBatch)
		if errors.Is(err, io.EOF) {
			return "", false, d.Close()
		}
		if err != nil {
			return "", false, err
		}
	}
	name, d.buf = d.buf[0], d.buf[1:]
	return name, true, nil
}

// Close releases the directory handle. It is safe to call more than once.
func (d *DirIter) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	d.buf = nil
	return err
}
