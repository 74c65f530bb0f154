package alloc

import (
	"unsafe"

	"github.com/joshuapare/ownkit/internal/buf"
	"github.com/joshuapare/ownkit/internal/logger"
)

// Allocator is the realloc-shaped capability a tree is bound to.
type Allocator interface {
	// Realloc allocates (mem == nil), resizes, or frees (elementSize*count == 0)
	// a block. It returns nil when the block was freed or the request failed;
	// on failure mem is left untouched.
	Realloc(mem []byte, elementSize, count int) []byte

	// Name identifies the implementation for diagnostics and metrics.
	Name() string
}

// Identical reports whether a and b are the same allocator.
func Identical(a, b Allocator) bool {
	return a == b
}

// Addr returns the identity of a block: the address of its first byte.
// It returns nil for a nil or zero-capacity slice.
func Addr(mem []byte) *byte {
	if cap(mem) == 0 {
		return nil
	}
	return unsafe.SliceData(mem)
}

// requestSize turns a realloc request into a byte count.
// An overflowing request is reported and treated as a failure.
func requestSize(name string, elementSize, count int) (int, bool) {
	n, err := buf.ByteSize(elementSize, count)
	if err != nil {
		logger.Debug("allocation request overflows", "allocator", name, "err", err)
		return 0, false
	}
	return n, true
}
