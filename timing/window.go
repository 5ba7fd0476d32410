package timing

import (
	"errors"
	"fmt"
	"time"

	"github.com/sarchlab/memblink/bitstream"
)

// ErrInvalidDuration is returned when a window duration is not positive.
var ErrInvalidDuration = errors.New("timing: window duration must be positive")

// Durations holds the window length for each bit value.
type Durations struct {
	Active time.Duration
	Idle   time.Duration
}

// Uniform returns Durations that give every bit the same window length.
func Uniform(d time.Duration) Durations {
	return Durations{Active: d, Idle: d}
}

// For returns the window length of bit.
func (d Durations) For(bit bitstream.Bit) time.Duration {
	if bit.IsActive() {
		return d.Active
	}

	return d.Idle
}

// Validate checks that both durations are positive.
func (d Durations) Validate() error {
	if d.Active <= 0 {
		return fmt.Errorf("%w: active %v", ErrInvalidDuration, d.Active)
	}

	if d.Idle <= 0 {
		return fmt.Errorf("%w: idle %v", ErrInvalidDuration, d.Idle)
	}

	return nil
}

// Window is the interval during which a single bit is transmitted.
// End is only meaningful once the window has expired.
type Window struct {
	Index    int
	Bit      bitstream.Bit
	Start    Instant
	Deadline Instant
	End      Instant
}

// Length returns the measured length of an expired window.
func (w Window) Length() time.Duration {
	return w.End.Sub(w.Start)
}

// Overshoot returns how far past the deadline the window ended.
func (w Window) Overshoot() time.Duration {
	return w.End.Sub(w.Deadline)
}

// ActivityStats counts the memory traffic generated during one active window.
type ActivityStats struct {
	// Touches is the number of stride-aligned bytes incremented.
	Touches uint64

	// Passes is the number of complete sweeps over the buffer.
	Passes uint64
}

// Summary describes a finished run.
type Summary struct {
	Windows      int
	Active       int
	Idle         int
	Touches      uint64
	MaxOvershoot time.Duration
}

func (s *Summary) record(w Window, stats ActivityStats) {
	s.Windows++

	if w.Bit.IsActive() {
		s.Active++
		s.Touches += stats.Touches
	} else {
		s.Idle++
	}

	if o := w.Overshoot(); o > s.MaxOvershoot {
		s.MaxOvershoot = o
	}
}
