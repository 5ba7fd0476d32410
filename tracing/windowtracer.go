package tracing

import (
	"github.com/sarchlab/memblink/datarecording"
	"github.com/sarchlab/memblink/timing"
)

// WindowTableName is the table that WindowTracer writes into.
const WindowTableName = "memblink_window"

// WindowRow is one recorded transmission window. Times are nanoseconds on
// the monotonic clock.
type WindowRow struct {
	RunID       string
	WindowIndex int
	Bit         uint8
	Phase       string
	StartNs     int64
	DeadlineNs  int64
	EndNs       int64
	LengthNs    int64
	OvershootNs int64
	Touches     uint64
	Passes      uint64
}

// WindowTracer is a hook that records every expired window.
type WindowTracer struct {
	runID    string
	recorder datarecording.DataRecorder
}

// NewWindowTracer creates the window table in recorder and returns a tracer
// that tags rows with runID.
func NewWindowTracer(runID string, recorder datarecording.DataRecorder) *WindowTracer {
	recorder.CreateTable(WindowTableName, WindowRow{})

	return &WindowTracer{
		runID:    runID,
		recorder: recorder,
	}
}

// Func records the window at HookPosWindowEnd.
func (t *WindowTracer) Func(ctx timing.HookCtx) {
	if ctx.Pos != timing.HookPosWindowEnd {
		return
	}

	w := ctx.Window

	t.recorder.InsertData(WindowTableName, WindowRow{
		RunID:       t.runID,
		WindowIndex: w.Index,
		Bit:         uint8(w.Bit),
		Phase:       PhaseName(w.Bit.IsActive()),
		StartNs:     int64(w.Start),
		DeadlineNs:  int64(w.Deadline),
		EndNs:       int64(w.End),
		LengthNs:    int64(w.Length()),
		OvershootNs: int64(w.Overshoot()),
		Touches:     ctx.Stats.Touches,
		Passes:      ctx.Stats.Passes,
	})
}
