//go:build !linux

package sigtab

import (
	"syscall"

	"golang.org/x/sys/unix"
)

var aliases = map[string]syscall.Signal{
	"SIGIOT": unix.SIGIOT,
}
