// Package bitstream provides the ordered bit sequences that memblink
// transmits, one bit per window.
package bitstream

import (
	"errors"
	"fmt"
	"strings"
)

// Bit is a single transmitted value. Only Zero and One are valid.
type Bit uint8

// The two transmittable values.
const (
	Zero Bit = 0
	One  Bit = 1
)

// IsActive returns true if the bit is transmitted as an active window.
func (b Bit) IsActive() bool {
	return b == One
}

// Policy defines what a stream does after delivering its last bit.
type Policy int

const (
	// Finite streams are exhausted after a single pass.
	Finite Policy = iota

	// Cyclic streams wrap to the first bit and are never exhausted.
	Cyclic
)

func (p Policy) String() string {
	switch p {
	case Finite:
		return "finite"
	case Cyclic:
		return "cyclic"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

var (
	// ErrEmptyStream is returned when a stream is built without bits.
	ErrEmptyStream = errors.New("bitstream: stream must contain at least one bit")

	// ErrInvalidBit is returned when a value other than 0 or 1 is given.
	ErrInvalidBit = errors.New("bitstream: invalid bit")
)

// Source supplies bits in order. Next returns false once the source is
// exhausted.
type Source interface {
	Next() (Bit, bool)
	Len() int
}

// Stream is a Source backed by a fixed slice of bits.
type Stream struct {
	bits      []Bit
	policy    Policy
	pos       int
	delivered uint64
}

// New creates a stream over a copy of bits.
func New(bits []Bit, policy Policy) (*Stream, error) {
	if len(bits) == 0 {
		return nil, ErrEmptyStream
	}

	if policy != Finite && policy != Cyclic {
		return nil, fmt.Errorf("bitstream: unknown policy %d", int(policy))
	}

	for i, b := range bits {
		if b > One {
			return nil, fmt.Errorf("%w: %d at position %d", ErrInvalidBit, b, i)
		}
	}

	owned := make([]Bit, len(bits))
	copy(owned, bits)

	return &Stream{bits: owned, policy: policy}, nil
}

// Pattern returns the cyclic active/idle pattern used by the fixed-pattern
// mode.
func Pattern() *Stream {
	return &Stream{bits: []Bit{One, Zero}, policy: Cyclic}
}

// Next returns the next bit. Cyclic streams never report exhaustion.
func (s *Stream) Next() (Bit, bool) {
	if s.pos == len(s.bits) {
		if s.policy == Finite {
			return Zero, false
		}

		s.pos = 0
	}

	b := s.bits[s.pos]
	s.pos++
	s.delivered++

	return b, true
}

// Len returns the number of bits in one pass of the stream.
func (s *Stream) Len() int {
	return len(s.bits)
}

// Position returns how many bits have been delivered so far.
func (s *Stream) Position() uint64 {
	return s.delivered
}

// Policy returns the exhaustion policy of the stream.
func (s *Stream) Policy() Policy {
	return s.policy
}

// Reset rewinds the stream to the first bit.
func (s *Stream) Reset() {
	s.pos = 0
	s.delivered = 0
}

// String renders the bits of one pass, e.g. "1011".
func (s *Stream) String() string {
	return Format(s.bits)
}

// Parse reads a textual bit sequence. Whitespace, commas, and underscores
// are separators.
func Parse(text string) ([]Bit, error) {
	bits := make([]Bit, 0, len(text))

	for i, r := range text {
		switch r {
		case '0':
			bits = append(bits, Zero)
		case '1':
			bits = append(bits, One)
		case ' ', '\t', '\n', '\r', ',', '_':
		default:
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidBit, r, i)
		}
	}

	if len(bits) == 0 {
		return nil, ErrEmptyStream
	}

	return bits, nil
}

// FromBytes expands data into bits, most significant bit first.
func FromBytes(data []byte) []Bit {
	bits := make([]Bit, 0, len(data)*8)

	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			bits = append(bits, Bit((b>>shift)&1))
		}
	}

	return bits
}

// Format renders bits as a string of '0' and '1'.
func Format(bits []Bit) string {
	var sb strings.Builder
	sb.Grow(len(bits))

	for _, b := range bits {
		sb.WriteByte('0' + byte(b))
	}

	return sb.String()
}
