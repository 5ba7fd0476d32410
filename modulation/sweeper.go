// Package modulation turns a bit into memory-subsystem behavior: a busy
// sweep over the buffer for a one, a true suspension for a zero.
package modulation

import (
	"fmt"

	"github.com/sarchlab/memblink/timing"
)

// Defaults for the sweep.
const (
	DefaultStride        = 64
	DefaultCheckInterval = 1024
)

// Sweeper is the active-window modulator. It increments every
// stride-aligned byte of the buffer in address order, wrapping at the end,
// until the deadline passes.
//
// The clock is read once every checkInterval touches, so the overshoot past
// the deadline is bounded by the time of one interval and does not grow with
// the buffer size. Sweep never yields the processor; the busy loop is the
// signal.
type Sweeper struct {
	clock         timing.Clock
	stride        int
	checkInterval int
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithStride sets the distance in bytes between two touched bytes.
func WithStride(bytes int) SweeperOption {
	return func(s *Sweeper) {
		s.stride = bytes
	}
}

// WithCheckInterval sets how many bytes are touched between two clock reads.
func WithCheckInterval(touches int) SweeperOption {
	return func(s *Sweeper) {
		s.checkInterval = touches
	}
}

// NewSweeper creates a Sweeper. It panics if the stride or the check
// interval is not positive.
func NewSweeper(clock timing.Clock, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		clock:         clock,
		stride:        DefaultStride,
		checkInterval: DefaultCheckInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.stride <= 0 {
		panic(fmt.Sprintf("modulation: stride must be positive, got %d", s.stride))
	}

	if s.checkInterval <= 0 {
		panic(fmt.Sprintf("modulation: check interval must be positive, got %d",
			s.checkInterval))
	}

	return s
}

// Stride returns the sweep stride in bytes.
func (s *Sweeper) Stride() int {
	return s.stride
}

// CheckInterval returns the number of touches between two clock reads.
func (s *Sweeper) CheckInterval() int {
	return s.checkInterval
}

// Sweep mutates buf until deadline and reports the traffic it generated.
// Every sweep starts at the beginning of the buffer.
func (s *Sweeper) Sweep(buf []byte, deadline timing.Instant) timing.ActivityStats {
	var stats timing.ActivityStats

	n := len(buf)
	if n == 0 {
		return stats
	}

	span := s.stride * s.checkInterval
	pos := 0

	for s.clock.Now().Before(deadline) {
		end := pos + span
		if end > n {
			end = n
		}

		for i := pos; i < end; i += s.stride {
			buf[i]++
		}

		stats.Touches += uint64((end - pos + s.stride - 1) / s.stride)

		pos = end
		if pos == n {
			pos = 0
			stats.Passes++
		}
	}

	return stats
}

var _ timing.Modulator = (*Sweeper)(nil)
