//go:build linux

package modulation

import (
	"golang.org/x/sys/unix"

	"github.com/sarchlab/memblink/timing"
)

const absoluteSleepSupported = true

// sleepUntilAbsolute asks the kernel to wake the thread at deadline on
// CLOCK_MONOTONIC. Interrupted sleeps are resumed with the same absolute
// deadline.
func sleepUntilAbsolute(deadline timing.Instant) error {
	ts := unix.NsecToTimespec(int64(deadline))

	for {
		err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, unix.TIMER_ABSTIME, &ts, nil)
		if err == unix.EINTR {
			continue
		}

		return err
	}
}
