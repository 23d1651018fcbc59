//go:build !linux

package posixrt

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

var alarmTimer struct {
	sync.Mutex
	t        *time.Timer
	deadline time.Time
}

func alarm(seconds int) (int, error) {
	alarmTimer.Lock()
	defer alarmTimer.Unlock()

	left := 0
	if alarmTimer.t != nil && alarmTimer.t.Stop() {
		left = roundSeconds(time.Until(alarmTimer.deadline))
	}
	alarmTimer.t = nil
	if seconds > 0 {
		d := time.Duration(seconds) * time.Second
		alarmTimer.deadline = time.Now().Add(d)
		alarmTimer.t = time.AfterFunc(d, func() {
			unix.Kill(unix.Getpid(), unix.SIGALRM)
		})
	}
	return left, nil
}
