package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sarchlab/memblink/timing"
)

// A ProgressBar tracks how many windows of a finite transmission have been
// sent and prints the progress after every window.
type ProgressBar struct {
	sync.Mutex
	*log.Logger

	Name      string
	StartTime time.Time
	Total     uint64
	Finished  uint64
}

// NewProgressBar creates a ProgressBar expecting total windows.
func NewProgressBar(name string, total uint64, logger *log.Logger) *ProgressBar {
	return &ProgressBar{
		Logger:    logger,
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}
}

// IncrementFinished adds amount to the finished windows.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// Remaining estimates the time left from the average window time so far.
func (b *ProgressBar) Remaining() time.Duration {
	b.Lock()
	defer b.Unlock()

	if b.Finished == 0 || b.Finished >= b.Total {
		return 0
	}

	perWindow := time.Since(b.StartTime) / time.Duration(b.Finished)

	return perWindow * time.Duration(b.Total-b.Finished)
}

func (b *ProgressBar) String() string {
	b.Lock()
	finished, total := b.Finished, b.Total
	b.Unlock()

	percent := 100.0
	if total > 0 {
		percent = 100 * float64(finished) / float64(total)
	}

	return fmt.Sprintf("%s: %d/%d (%.0f%%), %v remaining",
		b.Name, finished, total, percent, b.Remaining().Round(time.Second))
}

// Func counts a finished window and prints the progress.
func (b *ProgressBar) Func(ctx timing.HookCtx) {
	if ctx.Pos != timing.HookPosWindowEnd {
		return
	}

	b.IncrementFinished(1)
	b.Print(b.String())
}
