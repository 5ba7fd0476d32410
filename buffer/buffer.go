// Package buffer manages the memory region that memblink sweeps to produce
// activity. The region is mapped once, faulted in page by page, and pinned
// into physical memory when the host allows it.
package buffer

import (
	"errors"
	"fmt"
	"log"
	"os"
)

// FaultInPattern is the value written into the first byte of every page when
// the buffer is faulted in.
const FaultInPattern = 0xA5

// ErrInvalidSize is returned when the requested size is not a positive
// multiple of the page size.
var ErrInvalidSize = errors.New("buffer: size must be a positive multiple of the page size")

// AllocationError reports that the anonymous mapping could not be created.
// It is fatal; memblink cannot transmit without a buffer.
type AllocationError struct {
	Size int
	Err  error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("buffer: cannot map %d bytes: %v", e.Size, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// A Mapper provides the memory primitives the buffer is built on.
type Mapper interface {
	// PageSize returns the page size in effect.
	PageSize() int

	// Map creates an anonymous, private, read-write mapping.
	Map(size int) ([]byte, error)

	// Lock pins the region into physical memory.
	Lock(b []byte) error

	// Unlock undoes Lock.
	Unlock(b []byte) error

	// Unmap releases a region returned by Map.
	Unmap(b []byte) error
}

// Buffer is a mapped memory region. It is never resized.
type Buffer struct {
	data     []byte
	mapper   Mapper
	pageSize int
	pinned   bool
	pinErr   error
	released bool
}

type options struct {
	mapper Mapper
	logger *log.Logger
	pin    bool
}

// Option configures Acquire.
type Option func(*options)

// WithMapper replaces the system mapper.
func WithMapper(m Mapper) Option {
	return func(o *options) {
		o.mapper = m
	}
}

// WithLogger sets the logger that receives the pinning warning.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithoutPinning skips the attempt to lock the buffer into memory.
func WithoutPinning() Option {
	return func(o *options) {
		o.pin = false
	}
}

// Acquire maps a buffer of size bytes, pins it if possible, and touches one
// byte per page so that every page is backed before Acquire returns.
//
// A mapping failure is returned as *AllocationError. A pinning failure is
// logged once and reported through PinErr.
func Acquire(size int, opts ...Option) (*Buffer, error) {
	o := options{pin: true}
	for _, opt := range opts {
		opt(&o)
	}

	if o.mapper == nil {
		o.mapper = SystemMapper()
	}

	if o.logger == nil {
		o.logger = log.New(os.Stderr, "", log.LstdFlags)
	}

	pageSize := o.mapper.PageSize()
	if size <= 0 || pageSize <= 0 || size%pageSize != 0 {
		return nil, fmt.Errorf("%w: got %d, page size %d",
			ErrInvalidSize, size, pageSize)
	}

	data, err := o.mapper.Map(size)
	if err != nil {
		return nil, &AllocationError{Size: size, Err: err}
	}

	b := &Buffer{
		data:     data,
		mapper:   o.mapper,
		pageSize: pageSize,
	}

	if o.pin {
		b.pin(o.logger)
	}

	b.faultIn()

	return b, nil
}

func (b *Buffer) pin(logger *log.Logger) {
	err := b.mapper.Lock(b.data)
	if err != nil {
		b.pinErr = err
		logger.Printf("mlock failed: %v (continuing)", err)

		return
	}

	b.pinned = true
}

func (b *Buffer) faultIn() {
	for i := 0; i < len(b.data); i += b.pageSize {
		b.data[i] = FaultInPattern
	}
}

// Bytes returns the mapped region. The slice must not be used after Release.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Size returns the size of the buffer in bytes.
func (b *Buffer) Size() int {
	return len(b.data)
}

// PageSize returns the page size the buffer was faulted in with.
func (b *Buffer) PageSize() int {
	return b.pageSize
}

// Pinned returns true if the buffer is locked into physical memory.
func (b *Buffer) Pinned() bool {
	return b.pinned
}

// PinErr returns the reason pinning failed, or nil.
func (b *Buffer) PinErr() error {
	return b.pinErr
}

// Release unpins and unmaps the buffer. Calling it more than once is a no-op.
func (b *Buffer) Release() error {
	if b.released {
		return nil
	}

	b.released = true

	var errs []error

	if b.pinned {
		if err := b.mapper.Unlock(b.data); err != nil {
			errs = append(errs, fmt.Errorf("munlock failed: %w", err))
		}

		b.pinned = false
	}

	if err := b.mapper.Unmap(b.data); err != nil {
		errs = append(errs, fmt.Errorf("munmap failed: %w", err))
	}

	b.data = nil

	return errors.Join(errs...)
}

// MiB converts a size in mebibytes into bytes.
func MiB(n int) int {
	return n * 1024 * 1024
}
