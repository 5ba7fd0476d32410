// Package monitoring reports the resources used by a memblink process and
// checks that a buffer can plausibly be backed before it is requested.
package monitoring

import (
	"fmt"
	"log"
	"os"

	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"

	"github.com/sarchlab/memblink/timing"
)

// ResourceUsage is a snapshot of the process resource consumption.
type ResourceUsage struct {
	CPUPercent float64
	RSS        uint64
}

func (u ResourceUsage) String() string {
	return fmt.Sprintf("cpu=%.1f%% rss=%.1f MiB",
		u.CPUPercent, float64(u.RSS)/(1024*1024))
}

// ShortfallError reports that a buffer is larger than the memory the system
// currently has available. Mapping may still succeed, but the buffer is
// likely to be swapped.
type ShortfallError struct {
	Requested uint64
	Available uint64
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("buffer of %d bytes exceeds the %d bytes of available memory",
		e.Requested, e.Available)
}

// ResourceMonitor reads process and system memory statistics.
type ResourceMonitor struct {
	proc          *process.Process
	virtualMemory func() (*mem.VirtualMemoryStat, error)
}

// NewResourceMonitor creates a monitor for the current process.
func NewResourceMonitor() (*ResourceMonitor, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}

	return &ResourceMonitor{
		proc:          proc,
		virtualMemory: mem.VirtualMemory,
	}, nil
}

// Usage returns the current CPU and resident memory usage of the process.
func (m *ResourceMonitor) Usage() (ResourceUsage, error) {
	cpuPercent, err := m.proc.CPUPercent()
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("monitoring: cpu: %w", err)
	}

	memInfo, err := m.proc.MemoryInfo()
	if err != nil {
		return ResourceUsage{}, fmt.Errorf("monitoring: memory: %w", err)
	}

	return ResourceUsage{
		CPUPercent: cpuPercent,
		RSS:        memInfo.RSS,
	}, nil
}

// Preflight returns a *ShortfallError if size bytes exceed the available
// system memory.
func (m *ResourceMonitor) Preflight(size int) error {
	vm, err := m.virtualMemory()
	if err != nil {
		return fmt.Errorf("monitoring: virtual memory: %w", err)
	}

	if uint64(size) > vm.Available {
		return &ShortfallError{Requested: uint64(size), Available: vm.Available}
	}

	return nil
}

// ResourceHook prints the process resource usage after every window.
type ResourceHook struct {
	*log.Logger

	monitor *ResourceMonitor
}

// NewResourceHook creates a ResourceHook writing into logger.
func NewResourceHook(monitor *ResourceMonitor, logger *log.Logger) *ResourceHook {
	return &ResourceHook{Logger: logger, monitor: monitor}
}

// Func prints the usage at HookPosWindowEnd.
func (h *ResourceHook) Func(ctx timing.HookCtx) {
	if ctx.Pos != timing.HookPosWindowEnd {
		return
	}

	usage, err := h.monitor.Usage()
	if err != nil {
		h.Printf("Window %d: %v", ctx.Window.Index, err)
		return
	}

	h.Printf("Window %d: %s", ctx.Window.Index, usage)
}
