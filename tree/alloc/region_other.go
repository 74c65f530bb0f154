//go:build !linux && !darwin

package alloc

// mapRegion falls back to a heap slice where mmap isn't used.
func mapRegion(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func unmapRegion([]byte) error {
	return nil
}
