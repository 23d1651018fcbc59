package posixrt

import "time"

// roundSeconds rounds a remaining alarm to whole seconds the way alarm(2)
// reports it: to the nearest second, but never 0 for a pending alarm.
func roundSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	rem := d % time.Second
	if rem >= time.Second/2 || (secs == 0 && rem > 0) {
		secs++
	}
	return secs
}
