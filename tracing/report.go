package tracing

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sarchlab/memblink/datarecording"
)

// PhaseReport aggregates the windows of one phase.
type PhaseReport struct {
	Phase        string
	Windows      int
	MinLength    time.Duration
	MeanLength   time.Duration
	MaxLength    time.Duration
	MaxOvershoot time.Duration
	Touches      uint64
}

// RunReport summarizes a recorded run.
type RunReport struct {
	RunID   string
	Windows int
	Bits    string
	Active  PhaseReport
	Idle    PhaseReport
}

// ReadWindows loads the windows of runID in transmission order. An empty
// runID selects every run in the file; use SummarizeRuns to keep the runs
// apart.
func ReadWindows(
	ctx context.Context,
	reader datarecording.DataReader,
	runID string,
) ([]WindowRow, error) {
	reader.MapTable(WindowTableName, WindowRow{})

	params := datarecording.QueryParams{OrderBy: "StartNs"}
	if runID != "" {
		params.Where = "RunID = ?"
		params.Args = []any{runID}
	}

	results, _, err := reader.Query(ctx, WindowTableName, params)
	if err != nil {
		return nil, fmt.Errorf("read windows: %w", err)
	}

	rows := make([]WindowRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, *r.(*WindowRow))
	}

	return rows, nil
}

// SummarizeRuns groups rows by RunID, in order of each run's first window,
// and summarizes every run.
func SummarizeRuns(rows []WindowRow) []RunReport {
	var order []string
	byRun := make(map[string][]WindowRow)

	for _, row := range rows {
		if _, seen := byRun[row.RunID]; !seen {
			order = append(order, row.RunID)
		}

		byRun[row.RunID] = append(byRun[row.RunID], row)
	}

	reports := make([]RunReport, 0, len(order))
	for _, runID := range order {
		reports = append(reports, Summarize(byRun[runID]))
	}

	return reports
}

// Summarize aggregates the rows of a single run per phase. Rows are not
// checked for a common RunID.
func Summarize(rows []WindowRow) RunReport {
	report := RunReport{
		Windows: len(rows),
		Active:  PhaseReport{Phase: PhaseName(true)},
		Idle:    PhaseReport{Phase: PhaseName(false)},
	}

	bits := make([]byte, 0, len(rows))
	var activeTotal, idleTotal time.Duration

	for _, row := range rows {
		if report.RunID == "" {
			report.RunID = row.RunID
		}

		bits = append(bits, '0'+row.Bit)

		if row.Bit == 1 {
			activeTotal += addWindow(&report.Active, row)
		} else {
			idleTotal += addWindow(&report.Idle, row)
		}
	}

	report.Bits = string(bits)
	report.Active.MeanLength = mean(activeTotal, report.Active.Windows)
	report.Idle.MeanLength = mean(idleTotal, report.Idle.Windows)

	return report
}

func addWindow(p *PhaseReport, row WindowRow) time.Duration {
	length := time.Duration(row.LengthNs)
	overshoot := time.Duration(row.OvershootNs)

	if p.Windows == 0 || length < p.MinLength {
		p.MinLength = length
	}

	if length > p.MaxLength {
		p.MaxLength = length
	}

	if overshoot > p.MaxOvershoot {
		p.MaxOvershoot = overshoot
	}

	p.Windows++
	p.Touches += row.Touches

	return length
}

func mean(total time.Duration, n int) time.Duration {
	if n == 0 {
		return 0
	}

	return total / time.Duration(n)
}

// Print writes the report in a human-readable form.
func (r RunReport) Print(w io.Writer) {
	fmt.Fprintf(w, "run %s: %d windows\n", r.RunID, r.Windows)
	fmt.Fprintf(w, "bits: %s\n", r.Bits)

	for _, p := range []PhaseReport{r.Active, r.Idle} {
		fmt.Fprintf(w,
			"%-6s windows=%d length min=%v mean=%v max=%v overshoot max=%v touches=%d\n",
			p.Phase, p.Windows, p.MinLength, p.MeanLength, p.MaxLength,
			p.MaxOvershoot, p.Touches)
	}
}
