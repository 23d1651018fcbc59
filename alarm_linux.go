package posixrt

import (
	"time"

	"golang.org/x/sys/unix"
)

func alarm(seconds int) (int, error) {
	it := unix.Itimerval{Value: unix.NsecToTimeval(int64(seconds) * int64(time.Second))}
	old, err := unix.Setitimer(unix.ItimerReal, it)
	if err != nil {
		return 0, err
	}
	return roundSeconds(time.Duration(old.Value.Nano())), nil
}
