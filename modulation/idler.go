package modulation

import (
	"time"

	"github.com/sarchlab/memblink/timing"
)

// Idler is the idle-window waiter. It holds no reference to any buffer, so
// an idle window produces no memory traffic on it.
type Idler struct {
	clock    timing.Clock
	absolute bool
	sleep    func(time.Duration)
}

// NewIdler creates an Idler. When clock is a timing.MonotonicClock, waits
// are absolute-time kernel sleeps on the same clock where the platform
// supports them.
func NewIdler(clock timing.Clock) *Idler {
	_, monotonic := clock.(timing.MonotonicClock)

	return &Idler{
		clock:    clock,
		absolute: monotonic && absoluteSleepSupported,
		sleep:    time.Sleep,
	}
}

// WaitUntil suspends the calling thread until deadline.
func (w *Idler) WaitUntil(deadline timing.Instant) {
	if w.absolute && sleepUntilAbsolute(deadline) == nil {
		return
	}

	w.sleepUntil(deadline)
}

// sleepUntil re-reads the clock after every wake and sleeps the remainder
// until the deadline has passed.
func (w *Idler) sleepUntil(deadline timing.Instant) {
	for {
		now := w.clock.Now()
		if !now.Before(deadline) {
			return
		}

		w.sleep(deadline.Sub(now))
	}
}

var _ timing.Waiter = (*Idler)(nil)
