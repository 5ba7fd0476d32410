package datarecording

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tebeka/atexit"
)

// RunInfoTableName is the table that RunInfoRecorder writes into.
const RunInfoTableName = "memblink_run"

const timeLayout = "2006-01-02 15:04:05.000000000"

// RunInfo is one property of a run.
type RunInfo struct {
	RunID    string
	Property string
	Value    string
}

// RunInfoRecorder records how a run was started and when it ended.
// Properties are inserted as soon as they are set; only the end time waits
// for End.
type RunInfoRecorder struct {
	runID    string
	recorder DataRecorder
	endOnce  sync.Once
}

// NewRunInfoRecorder creates the run table in recorder.
func NewRunInfoRecorder(runID string, recorder DataRecorder) *RunInfoRecorder {
	recorder.CreateTable(RunInfoTableName, RunInfo{})

	return &RunInfoRecorder{
		runID:    runID,
		recorder: recorder,
	}
}

// Set inserts a property.
func (e *RunInfoRecorder) Set(property string, value any) {
	e.recorder.InsertData(RunInfoTableName, RunInfo{
		RunID:    e.runID,
		Property: property,
		Value:    fmt.Sprint(value),
	})
}

// Start records the start time, the command line, and the working
// directory, and registers End as an exit handler so that the end time is
// also recorded when the process is terminated through atexit.
func (e *RunInfoRecorder) Start() {
	e.Set("Start Time", time.Now().Format(timeLayout))
	e.Set("Command", strings.Join(os.Args, " "))

	cwd, err := os.Getwd()
	if err == nil {
		e.Set("Working Directory", cwd)
	}

	atexit.Register(e.End)
}

// End records the end time and flushes the recorder. Only the first call
// has an effect.
func (e *RunInfoRecorder) End() {
	e.endOnce.Do(func() {
		e.Set("End Time", time.Now().Format(timeLayout))
		e.recorder.Flush()
	})
}
