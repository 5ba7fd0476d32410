//go:build unix

package buffer

import (
	"golang.org/x/sys/unix"
)

type systemMapper struct{}

// SystemMapper returns the mapper backed by mmap and mlock.
func SystemMapper() Mapper {
	return systemMapper{}
}

func (systemMapper) PageSize() int {
	return unix.Getpagesize()
}

func (systemMapper) Map(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
}

func (systemMapper) Lock(b []byte) error {
	return unix.Mlock(b)
}

func (systemMapper) Unlock(b []byte) error {
	return unix.Munlock(b)
}

func (systemMapper) Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	return unix.Munmap(b)
}
