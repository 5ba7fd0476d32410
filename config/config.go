// Package config holds the memblink settings, their defaults for each
// operating mode, and loading from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sarchlab/memblink/bitstream"
	"github.com/sarchlab/memblink/modulation"
	"github.com/sarchlab/memblink/timing"
)

// Mode is the operating mode.
type Mode int

const (
	// PatternMode alternates one active and one idle window forever.
	PatternMode Mode = iota

	// StreamMode transmits a bit stream with uniform windows.
	StreamMode
)

func (m Mode) String() string {
	if m == PatternMode {
		return "pattern"
	}

	return "stream"
}

// DefaultMessage is the bit stream transmitted when none is configured.
const DefaultMessage = "10110010110001010110001"

// Environment variable names.
const (
	EnvBufferMiB     = "MEMBLINK_BUFFER_MIB"
	EnvActiveWindow  = "MEMBLINK_ACTIVE_WINDOW_MS"
	EnvIdleWindow    = "MEMBLINK_IDLE_WINDOW_MS"
	EnvBitWindow     = "MEMBLINK_BIT_WINDOW_MS"
	EnvBitStream     = "MEMBLINK_BIT_STREAM"
	EnvStride        = "MEMBLINK_STRIDE"
	EnvCheckInterval = "MEMBLINK_CHECK_INTERVAL"
	EnvRepeat        = "MEMBLINK_REPEAT"
	EnvTrace         = "MEMBLINK_TRACE"
)

// MaxBufferMiB is the largest buffer size whose byte count fits in an int.
const MaxBufferMiB = math.MaxInt >> 20

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the complete set of options.
type Config struct {
	Mode Mode

	BufferMiB int

	// ActiveWindow and IdleWindow are used in PatternMode.
	ActiveWindow time.Duration
	IdleWindow   time.Duration

	// BitWindow, Bits, Message, Repeat, and Count are used in StreamMode.
	// Message, when set, replaces Bits.
	BitWindow time.Duration
	Bits      string
	Message   string
	Repeat    bool
	Count     int

	Stride        int
	CheckInterval int
	Pin           bool

	TracePath string
	Resources bool
}

// Defaults returns the default configuration of mode.
func Defaults(mode Mode) Config {
	c := Config{
		Mode:          mode,
		Stride:        modulation.DefaultStride,
		CheckInterval: modulation.DefaultCheckInterval,
		Pin:           true,
	}

	switch mode {
	case PatternMode:
		c.BufferMiB = 5555
		c.ActiveWindow = 10000 * time.Millisecond
		c.IdleWindow = 5000 * time.Millisecond
	default:
		c.BufferMiB = 512
		c.BitWindow = 1000 * time.Millisecond
		c.Bits = DefaultMessage
		c.Repeat = true
	}

	return c
}

// Load reads envFile, if it exists, into the process environment without
// overriding variables that are already set, and then applies the
// MEMBLINK_* variables on top of base.
func Load(envFile string, base Config) (Config, error) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return base, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	return FromEnv(base)
}

// FromEnv applies the MEMBLINK_* environment variables on top of base.
func FromEnv(base Config) (Config, error) {
	c := base

	intVars := []struct {
		name string
		dst  *int
	}{
		{EnvBufferMiB, &c.BufferMiB},
		{EnvStride, &c.Stride},
		{EnvCheckInterval, &c.CheckInterval},
	}
	for _, v := range intVars {
		err := lookupInt(v.name, v.dst)
		if err != nil {
			return base, err
		}
	}

	msVars := []struct {
		name string
		dst  *time.Duration
	}{
		{EnvActiveWindow, &c.ActiveWindow},
		{EnvIdleWindow, &c.IdleWindow},
		{EnvBitWindow, &c.BitWindow},
	}
	for _, v := range msVars {
		var ms int

		err := lookupInt(v.name, &ms)
		if err != nil {
			return base, err
		}

		if _, ok := os.LookupEnv(v.name); ok {
			*v.dst = time.Duration(ms) * time.Millisecond
		}
	}

	if s, ok := os.LookupEnv(EnvRepeat); ok {
		repeat, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return base, fmt.Errorf("%w: %s=%q", ErrInvalidConfig, EnvRepeat, s)
		}

		c.Repeat = repeat
	}

	if s, ok := os.LookupEnv(EnvBitStream); ok {
		c.Bits = s
	}

	if s, ok := os.LookupEnv(EnvTrace); ok {
		c.TracePath = s
	}

	return c, nil
}

func lookupInt(name string, dst *int) error {
	s, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidConfig, name, s)
	}

	*dst = n

	return nil
}

// Validate rejects settings that would lead to undefined timing behavior.
func (c Config) Validate() error {
	if c.BufferMiB <= 0 {
		return fmt.Errorf("%w: buffer size must be positive, got %d MiB",
			ErrInvalidConfig, c.BufferMiB)
	}

	if c.BufferMiB > MaxBufferMiB {
		return fmt.Errorf("%w: buffer size %d MiB exceeds %d MiB",
			ErrInvalidConfig, c.BufferMiB, MaxBufferMiB)
	}

	pageSize := os.Getpagesize()
	if c.Stride <= 0 || pageSize%c.Stride != 0 {
		return fmt.Errorf("%w: stride %d must be positive and divide the page size %d",
			ErrInvalidConfig, c.Stride, pageSize)
	}

	if c.CheckInterval <= 0 {
		return fmt.Errorf("%w: check interval must be positive, got %d",
			ErrInvalidConfig, c.CheckInterval)
	}

	if c.Count < 0 {
		return fmt.Errorf("%w: count must not be negative, got %d",
			ErrInvalidConfig, c.Count)
	}

	if err := c.Durations().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if c.Mode == StreamMode {
		if _, err := c.BitSequence(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	return nil
}

// BufferBytes returns the buffer size in bytes.
func (c Config) BufferBytes() int {
	return c.BufferMiB * 1024 * 1024
}

// Durations returns the window durations of the configured mode.
func (c Config) Durations() timing.Durations {
	if c.Mode == PatternMode {
		return timing.Durations{Active: c.ActiveWindow, Idle: c.IdleWindow}
	}

	return timing.Uniform(c.BitWindow)
}

// BitSequence returns the bits of one pass of the stream. Message takes
// precedence over Bits.
func (c Config) BitSequence() ([]bitstream.Bit, error) {
	if c.Message != "" {
		return bitstream.FromBytes([]byte(c.Message)), nil
	}

	return bitstream.Parse(c.Bits)
}

// Policy returns the stream policy.
func (c Config) Policy() bitstream.Policy {
	if c.Mode == PatternMode || c.Repeat {
		return bitstream.Cyclic
	}

	return bitstream.Finite
}
