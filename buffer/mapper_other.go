//go:build !unix

package buffer

import (
	"errors"
	"os"
)

var errPinUnsupported = errors.New("memory locking is not supported on this platform")

// heapMapper falls back to Go-managed memory where mmap is not available.
type heapMapper struct{}

// SystemMapper returns a heap-backed mapper. Pinning always fails.
func SystemMapper() Mapper {
	return heapMapper{}
}

func (heapMapper) PageSize() int {
	return os.Getpagesize()
}

func (heapMapper) Map(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func (heapMapper) Lock([]byte) error {
	return errPinUnsupported
}

func (heapMapper) Unlock([]byte) error {
	return nil
}

func (heapMapper) Unmap([]byte) error {
	return nil
}
