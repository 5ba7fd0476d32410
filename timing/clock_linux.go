//go:build linux

package timing

import (
	"golang.org/x/sys/unix"
)

// MonotonicClock reads CLOCK_MONOTONIC. Instants it returns can be handed
// to clock_nanosleep as absolute wake times.
type MonotonicClock struct{}

// Now returns the current CLOCK_MONOTONIC reading.
func (MonotonicClock) Now() Instant {
	var ts unix.Timespec

	err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	if err != nil {
		panic(err)
	}

	return Instant(ts.Nano())
}
