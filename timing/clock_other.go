//go:build !linux

package timing

import (
	"time"
)

var clockOrigin = time.Now()

// MonotonicClock reads the monotonic component of the Go runtime clock,
// measured from process start.
type MonotonicClock struct{}

// Now returns the time elapsed since the clock origin.
func (MonotonicClock) Now() Instant {
	return Instant(time.Since(clockOrigin))
}
