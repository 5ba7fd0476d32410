// Package timing drives the transmission windows. Every bit gets its own
// window whose deadline is computed from the monotonic clock at the moment
// the window starts.
package timing

import (
	"context"
	"errors"
	"runtime"

	"github.com/sarchlab/memblink/bitstream"
)

// ErrEmptyBuffer is returned when Run is given a buffer without bytes.
var ErrEmptyBuffer = errors.New("timing: buffer must not be empty")

// ErrNoSource is returned when Run is given a nil bit source.
var ErrNoSource = errors.New("timing: bit source must not be nil")

// Modulator generates memory activity until a deadline. It is expected to
// busy-wait; yielding would flatten the signal.
type Modulator interface {
	Sweep(buf []byte, deadline Instant) ActivityStats
}

// Waiter suspends the caller until an absolute deadline without touching any
// memory buffer.
type Waiter interface {
	WaitUntil(deadline Instant)
}

// StopCondition is consulted before each window with the number of windows
// completed so far. Returning true ends the run.
type StopCondition func(completed int) bool

// Never returns a StopCondition that never stops the run.
func Never() StopCondition {
	return func(int) bool { return false }
}

// AfterWindows stops the run after n windows.
func AfterWindows(n int) StopCondition {
	return func(completed int) bool { return completed >= n }
}

// UntilCancelled stops the run once ctx is done. A window in progress is
// always finished first.
func UntilCancelled(ctx context.Context) StopCondition {
	return func(int) bool { return ctx.Err() != nil }
}

// Scheduler runs transmission windows strictly one after another.
type Scheduler struct {
	*HookableBase

	clock    Clock
	activity Modulator
	idle     Waiter
}

// NewScheduler creates a Scheduler.
func NewScheduler(clock Clock, activity Modulator, idle Waiter) *Scheduler {
	return &Scheduler{
		HookableBase: NewHookableBase(),
		clock:        clock,
		activity:     activity,
		idle:         idle,
	}
}

// Run transmits bits from src until it is exhausted or stop returns true.
// Active bits are handed to the modulator and idle bits to the waiter, each
// with a deadline of the window's own start plus its duration. Lateness of
// one window is neither carried into nor compensated by the next.
//
// With a cyclic source and a nil or Never stop condition, Run does not
// return.
func (s *Scheduler) Run(
	buf []byte,
	src bitstream.Source,
	durations Durations,
	stop StopCondition,
) (Summary, error) {
	err := s.runMustBeValid(buf, src, durations)
	if err != nil {
		return Summary{}, err
	}

	if stop == nil {
		stop = Never()
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var summary Summary

	for !stop(summary.Windows) {
		bit, ok := src.Next()
		if !ok {
			break
		}

		w, stats := s.transmit(summary.Windows, bit, buf, durations)
		summary.record(w, stats)
	}

	return summary, nil
}

func (s *Scheduler) runMustBeValid(
	buf []byte,
	src bitstream.Source,
	durations Durations,
) error {
	if len(buf) == 0 {
		return ErrEmptyBuffer
	}

	if src == nil {
		return ErrNoSource
	}

	return durations.Validate()
}

func (s *Scheduler) transmit(
	index int,
	bit bitstream.Bit,
	buf []byte,
	durations Durations,
) (Window, ActivityStats) {
	start := s.clock.Now()
	w := Window{
		Index:    index,
		Bit:      bit,
		Start:    start,
		Deadline: start.Add(durations.For(bit)),
	}

	s.InvokeHook(HookCtx{Domain: s, Pos: HookPosWindowStart, Window: w})

	var stats ActivityStats
	if bit.IsActive() {
		stats = s.activity.Sweep(buf, w.Deadline)
	} else {
		s.idle.WaitUntil(w.Deadline)
	}

	w.End = s.clock.Now()

	s.InvokeHook(HookCtx{
		Domain: s,
		Pos:    HookPosWindowEnd,
		Window: w,
		Stats:  stats,
	})

	return w, stats
}
