// Package tracing provides hooks that report transmission windows, either
// as human-readable status lines or as rows in a data recorder.
package tracing

import (
	"log"

	"github.com/sarchlab/memblink/timing"
)

// LogHookBase provides the logger shared by the logging hooks.
type LogHookBase struct {
	*log.Logger
}

// StatusStyle selects how window lines are worded.
type StatusStyle int

const (
	// BitStyle prints one line per bit, e.g. "Bit 3 = 1 (active)".
	BitStyle StatusStyle = iota

	// PhaseStyle prints "Start writing" and "Sleeping" for the fixed
	// active/idle pattern.
	PhaseStyle
)

// StatusLogger is a hook that prints a line when a window starts.
type StatusLogger struct {
	LogHookBase

	style StatusStyle
}

// NewStatusLogger returns a StatusLogger that writes into logger.
func NewStatusLogger(logger *log.Logger, style StatusStyle) *StatusLogger {
	h := new(StatusLogger)
	h.Logger = logger
	h.style = style

	return h
}

// Func writes the status line of a starting window.
func (h *StatusLogger) Func(ctx timing.HookCtx) {
	if ctx.Pos != timing.HookPosWindowStart {
		return
	}

	w := ctx.Window

	if h.style == PhaseStyle {
		if w.Bit.IsActive() {
			h.Logger.Print("Start writing")
		} else {
			h.Logger.Print("Sleeping")
		}

		return
	}

	h.Logger.Printf("Bit %d = %d (%s)", w.Index, w.Bit, PhaseName(w.Bit.IsActive()))
}

// PhaseName names the phase of a window.
func PhaseName(active bool) string {
	if active {
		return "active"
	}

	return "idle"
}
