package timing

import (
	"fmt"
	"time"
)

// Instant is a reading of the monotonic clock in nanoseconds. Its origin is
// arbitrary; only differences between instants are meaningful.
type Instant int64

// Add returns the instant d after t.
func (t Instant) Add(d time.Duration) Instant {
	return t + Instant(d)
}

// Sub returns the duration t-u.
func (t Instant) Sub(u Instant) time.Duration {
	return time.Duration(t - u)
}

// Before reports whether t is earlier than u.
func (t Instant) Before(u Instant) bool {
	return t < u
}

func (t Instant) String() string {
	return fmt.Sprintf("%.9fs", float64(t)/1e9)
}

// Clock reports the current monotonic time.
type Clock interface {
	Now() Instant
}
