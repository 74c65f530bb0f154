//go:build linux || darwin

package alloc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// mapRegion reserves an anonymous private mapping for an arena.
func mapRegion(size int) ([]byte, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap %d bytes: %w", size, err)
	}
	return data, nil
}

func unmapRegion(data []byte) error {
	return unix.Munmap(data)
}
