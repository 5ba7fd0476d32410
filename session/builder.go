package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rs/xid"

	"github.com/sarchlab/memblink/bitstream"
	"github.com/sarchlab/memblink/buffer"
	"github.com/sarchlab/memblink/config"
	"github.com/sarchlab/memblink/datarecording"
	"github.com/sarchlab/memblink/modulation"
	"github.com/sarchlab/memblink/monitoring"
	"github.com/sarchlab/memblink/timing"
	"github.com/sarchlab/memblink/tracing"
)

// AutoTracePath names the trace file after the run ID.
const AutoTracePath = "auto"

// Builder can be used to build a session.
type Builder struct {
	bufferBytes   int
	stride        int
	checkInterval int
	durations     timing.Durations
	bits          []bitstream.Bit
	policy        bitstream.Policy
	pattern       bool
	count         int
	pin           bool
	tracePath     string
	resources     bool
	progress      bool

	mapper   buffer.Mapper
	clock    timing.Clock
	idler    timing.Waiter
	status   io.Writer
	warnings *log.Logger
	hooks    []timing.Hook
}

// MakeBuilder creates a new builder that transmits the fixed active/idle
// pattern.
func MakeBuilder() Builder {
	return Builder{
		stride:        modulation.DefaultStride,
		checkInterval: modulation.DefaultCheckInterval,
		pattern:       true,
		pin:           true,
		progress:      true,
		status:        os.Stdout,
	}
}

// WithConfig applies every setting of c.
func (b Builder) WithConfig(c config.Config) (Builder, error) {
	err := c.Validate()
	if err != nil {
		return b, err
	}

	b = b.WithBufferSize(c.BufferBytes()).
		WithStride(c.Stride).
		WithCheckInterval(c.CheckInterval).
		WithDurations(c.Durations()).
		WithCount(c.Count).
		WithTracePath(c.TracePath)

	if c.Mode == config.StreamMode {
		bits, err := c.BitSequence()
		if err != nil {
			return b, err
		}

		b = b.WithBits(bits, c.Policy())
	} else {
		b = b.WithPattern()
	}

	if !c.Pin {
		b = b.WithoutPinning()
	}

	if c.Resources {
		b = b.WithResourceMonitoring()
	}

	return b, nil
}

// WithBufferSize sets the buffer size in bytes.
func (b Builder) WithBufferSize(bytes int) Builder {
	b.bufferBytes = bytes
	return b
}

// WithStride sets the sweep stride in bytes.
func (b Builder) WithStride(bytes int) Builder {
	b.stride = bytes
	return b
}

// WithCheckInterval sets how many touches happen between clock reads.
func (b Builder) WithCheckInterval(touches int) Builder {
	b.checkInterval = touches
	return b
}

// WithDurations sets the active and idle window durations.
func (b Builder) WithDurations(d timing.Durations) Builder {
	b.durations = d
	return b
}

// WithBits transmits bits under policy instead of the fixed pattern.
func (b Builder) WithBits(bits []bitstream.Bit, policy bitstream.Policy) Builder {
	b.bits = bits
	b.policy = policy
	b.pattern = false

	return b
}

// WithPattern transmits the fixed active/idle pattern.
func (b Builder) WithPattern() Builder {
	b.bits = nil
	b.pattern = true

	return b
}

// WithCount stops the session after n windows. Zero means no limit.
func (b Builder) WithCount(n int) Builder {
	b.count = n
	return b
}

// WithoutPinning skips locking the buffer into physical memory.
func (b Builder) WithoutPinning() Builder {
	b.pin = false
	return b
}

// WithTracePath records every window into an SQLite file at path. The
// file extension is appended. AutoTracePath selects "memblink_<run ID>".
func (b Builder) WithTracePath(path string) Builder {
	b.tracePath = path
	return b
}

// WithResourceMonitoring prints the process resource usage after every
// window.
func (b Builder) WithResourceMonitoring() Builder {
	b.resources = true
	return b
}

// WithoutProgress disables the progress line of finite sessions.
func (b Builder) WithoutProgress() Builder {
	b.progress = false
	return b
}

// WithMapper sets the mapper that backs the buffer.
func (b Builder) WithMapper(m buffer.Mapper) Builder {
	b.mapper = m
	return b
}

// WithClock sets the clock used for deadlines. The default is the
// monotonic clock.
func (b Builder) WithClock(c timing.Clock) Builder {
	b.clock = c
	return b
}

// WithIdler replaces the waiter used for idle windows.
func (b Builder) WithIdler(w timing.Waiter) Builder {
	b.idler = w
	return b
}

// WithStatusOutput sets where status lines are written.
func (b Builder) WithStatusOutput(w io.Writer) Builder {
	b.status = w
	return b
}

// WithWarningLogger sets the logger for non-fatal warnings.
func (b Builder) WithWarningLogger(l *log.Logger) Builder {
	b.warnings = l
	return b
}

// WithHook adds a hook to the scheduler after the built-in ones.
func (b Builder) WithHook(h timing.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

func (b Builder) parametersMustBeValid() error {
	if b.bufferBytes <= 0 {
		return fmt.Errorf("%w: buffer size %d", buffer.ErrInvalidSize, b.bufferBytes)
	}

	if b.stride <= 0 || b.checkInterval <= 0 {
		return fmt.Errorf("session: stride %d and check interval %d must be positive",
			b.stride, b.checkInterval)
	}

	if b.count < 0 {
		return fmt.Errorf("session: negative window count %d", b.count)
	}

	if !b.pattern && len(b.bits) == 0 {
		return bitstream.ErrEmptyStream
	}

	return b.durations.Validate()
}

// Build validates the parameters, acquires the buffer, and wires the
// scheduler with its hooks. Nothing is transmitted until Run is called.
func (b Builder) Build() (*Session, error) {
	err := b.parametersMustBeValid()
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        xid.New().String(),
		durations: b.durations,
		count:     b.count,
		pattern:   b.pattern,
		status:    log.New(b.status, "", 0),
	}

	warnings := b.warnings
	if warnings == nil {
		warnings = log.New(os.Stderr, "memblink: ", log.LstdFlags)
	}

	s.source, err = b.buildSource()
	if err != nil {
		return nil, err
	}

	monitor := b.preflight(warnings)

	s.buf, err = buffer.Acquire(b.bufferBytes, b.bufferOptions(warnings)...)
	if err != nil {
		return nil, err
	}

	clock := b.clock
	if clock == nil {
		clock = timing.MonotonicClock{}
	}

	idler := b.idler
	if idler == nil {
		idler = modulation.NewIdler(clock)
	}

	sweeper := modulation.NewSweeper(clock,
		modulation.WithStride(b.stride),
		modulation.WithCheckInterval(b.checkInterval))
	s.scheduler = timing.NewScheduler(clock, sweeper, idler)

	err = b.attachHooks(s, monitor, warnings)
	if err != nil {
		releaseErr := s.buf.Release()
		return nil, errors.Join(err, releaseErr)
	}

	return s, nil
}

func (b Builder) buildSource() (*bitstream.Stream, error) {
	if b.pattern {
		return bitstream.Pattern(), nil
	}

	return bitstream.New(b.bits, b.policy)
}

func (b Builder) bufferOptions(warnings *log.Logger) []buffer.Option {
	opts := []buffer.Option{buffer.WithLogger(warnings)}

	if b.mapper != nil {
		opts = append(opts, buffer.WithMapper(b.mapper))
	}

	if !b.pin {
		opts = append(opts, buffer.WithoutPinning())
	}

	return opts
}

// preflight warns when the buffer is larger than the available memory. The
// returned monitor is nil if process statistics are unavailable.
func (b Builder) preflight(warnings *log.Logger) *monitoring.ResourceMonitor {
	monitor, err := monitoring.NewResourceMonitor()
	if err != nil {
		warnings.Printf("resource monitor unavailable: %v", err)
		return nil
	}

	err = monitor.Preflight(b.bufferBytes)
	if err != nil {
		warnings.Printf("preflight: %v", err)
	}

	return monitor
}

func (b Builder) attachHooks(
	s *Session,
	monitor *monitoring.ResourceMonitor,
	warnings *log.Logger,
) error {
	style := tracing.BitStyle
	if b.pattern {
		style = tracing.PhaseStyle
	}

	s.scheduler.AcceptHook(tracing.NewStatusLogger(s.status, style))

	if b.tracePath != "" {
		path := b.tracePath
		if path == AutoTracePath {
			path = "memblink_" + s.id
		}

		recorder, err := datarecording.New(path)
		if err != nil {
			return fmt.Errorf("session: trace: %w", err)
		}

		s.recorder = recorder
		s.runInfo = b.recordRunInfo(s)
		s.scheduler.AcceptHook(tracing.NewWindowTracer(s.id, recorder))
	}

	if total := s.totalWindows(); b.progress && total > 0 {
		s.scheduler.AcceptHook(
			monitoring.NewProgressBar(s.id, uint64(total), s.status))
	}

	if b.resources {
		if monitor == nil {
			warnings.Print("resource monitoring disabled")
		} else {
			s.scheduler.AcceptHook(monitoring.NewResourceHook(monitor, s.status))
		}
	}

	for _, h := range b.hooks {
		s.scheduler.AcceptHook(h)
	}

	return nil
}

func (b Builder) recordRunInfo(s *Session) *datarecording.RunInfoRecorder {
	info := datarecording.NewRunInfoRecorder(s.id, s.recorder)
	info.Start()
	info.Set("Buffer Bytes", s.buf.Size())
	info.Set("Pinned", s.buf.Pinned())
	info.Set("Stride", b.stride)
	info.Set("Check Interval", b.checkInterval)
	info.Set("Active Window", b.durations.Active)
	info.Set("Idle Window", b.durations.Idle)
	info.Set("Policy", s.source.Policy())
	info.Set("Bits", s.source)

	return info
}
