// Package session assembles a buffer, a bit source, and a scheduler into
// one transmission run.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/sarchlab/memblink/bitstream"
	"github.com/sarchlab/memblink/buffer"
	"github.com/sarchlab/memblink/datarecording"
	"github.com/sarchlab/memblink/timing"
)

// A Session owns the resources of one run.
type Session struct {
	id        string
	buf       *buffer.Buffer
	source    *bitstream.Stream
	durations timing.Durations
	count     int
	pattern   bool
	scheduler *timing.Scheduler
	recorder  datarecording.DataRecorder
	runInfo   *datarecording.RunInfoRecorder
	status    *log.Logger
}

// ID returns the run ID. Trace rows are tagged with it.
func (s *Session) ID() string {
	return s.id
}

// Buffer returns the acquired buffer.
func (s *Session) Buffer() *buffer.Buffer {
	return s.buf
}

// Source returns the bit stream.
func (s *Session) Source() *bitstream.Stream {
	return s.source
}

// Scheduler returns the scheduler, so that more hooks can be attached.
func (s *Session) Scheduler() *timing.Scheduler {
	return s.scheduler
}

// Recorder returns the trace recorder, or nil when tracing is off.
func (s *Session) Recorder() datarecording.DataRecorder {
	return s.recorder
}

// totalWindows returns the number of windows the session will transmit, or
// 0 if it runs until cancelled.
func (s *Session) totalWindows() int {
	total := 0
	if s.source.Policy() == bitstream.Finite {
		total = s.source.Len()
	}

	if s.count > 0 && (total == 0 || s.count < total) {
		total = s.count
	}

	return total
}

// PrintBanner writes the run parameters.
func (s *Session) PrintBanner() {
	s.status.Printf("memblink run %s: buffer %d MiB (pinned: %t)",
		s.id, s.buf.Size()/buffer.MiB(1), s.buf.Pinned())

	if s.pattern {
		s.status.Printf("active %v, idle %v", s.durations.Active, s.durations.Idle)
	} else {
		s.status.Printf("%d bits, %s, window %v",
			s.source.Len(), s.source.Policy(), s.durations.Active)
	}

	if s.totalWindows() == 0 {
		s.status.Print("Press Ctrl-C to stop")
	}
}

// Run transmits until the source is exhausted, the window count is reached,
// or ctx is cancelled. A context cancellation is observed between windows.
func (s *Session) Run(ctx context.Context) (timing.Summary, error) {
	stop := timing.UntilCancelled(ctx)
	if s.count > 0 {
		limit := timing.AfterWindows(s.count)
		cancelled := stop
		stop = func(completed int) bool {
			return limit(completed) || cancelled(completed)
		}
	}

	summary, err := s.scheduler.Run(s.buf.Bytes(), s.source, s.durations, stop)
	if err != nil {
		return summary, fmt.Errorf("session %s: %w", s.id, err)
	}

	if s.recorder != nil {
		s.recorder.Flush()
	}

	return summary, nil
}

// Close releases the buffer and closes the trace recorder.
func (s *Session) Close() error {
	var errs []error

	if err := s.buf.Release(); err != nil {
		errs = append(errs, err)
	}

	if s.recorder != nil {
		if s.runInfo != nil {
			s.runInfo.End()
			s.runInfo = nil
		}

		if err := s.recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
