package proc

import "golang.org/x/sys/unix"

// dup3 rejects equal descriptors where dup2 is a no-op.
func dup2(oldfd, newfd int) error {
	if oldfd == newfd {
		_, err := unix.FcntlInt(uintptr(oldfd), unix.F_GETFD, 0)
		return err
	}
	return unix.Dup3(oldfd, newfd, 0)
}
