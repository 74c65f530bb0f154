package alloc

import (
	"encoding/binary"
	"fmt"
	"sync"
	"unsafe"

	"github.com/joshuapare/ownkit/internal/buf"
	"github.com/joshuapare/ownkit/internal/logger"
)

const (
	// ArenaAlign is the alignment of every arena chunk.
	ArenaAlign = 16

	// arenaHeader holds the data size and the chunk size, 8 bytes each.
	arenaHeader = 16

	// minArenaSize is the smallest region NewArena retries down to.
	minArenaSize = 1024
)

// Arena bump-allocates from one pre-allocated region.
//
// Layout of a chunk:
//
//	+0  data size  (uint64 LE)
//	+8  chunk size (uint64 LE, header included, 16 byte aligned)
//	+16 data
//
// Only the most recent chunk can be freed or resized in place.
type Arena struct {
	mu      sync.Mutex
	region  []byte
	used    int
	last    int // offset of the most recent chunk header
	hasLast bool
}

// NewArena reserves a region of size bytes. When the reservation fails the
// size is halved until it drops below 1KB.
func NewArena(size int) (*Arena, error) {
	size = buf.AlignUp(size, ArenaAlign)
	for size >= minArenaSize {
		region, err := mapRegion(size)
		if err == nil {
			logger.Debug("arena region reserved", "bytes", size)
			return &Arena{region: region}, nil
		}
		logger.Warn("arena region reservation failed, halving", "bytes", size, "err", err)
		size /= 2
	}
	return nil, ErrRegionTooSmall
}

// Name implements Allocator.
func (a *Arena) Name() string { return "arena" }

// offset returns the data offset of mem inside the region.
// Caller holds a.mu.
func (a *Arena) offset(mem []byte) (int, bool) {
	addr := Addr(mem)
	if addr == nil || len(a.region) == 0 {
		return 0, false
	}
	base := uintptr(unsafe.Pointer(unsafe.SliceData(a.region)))
	ptr := uintptr(unsafe.Pointer(addr))
	if ptr < base+arenaHeader || ptr >= base+uintptr(len(a.region)) {
		return 0, false
	}
	return int(ptr - base), true
}

// Realloc implements Allocator.
func (a *Arena) Realloc(mem []byte, elementSize, count int) []byte {
	n, ok := requestSize(a.Name(), elementSize, count)
	if !ok {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var off int
	if mem != nil {
		var inside bool
		off, inside = a.offset(mem)
		if !inside {
			logger.Error("arena realloc of foreign memory", "len", len(mem))
			return nil
		}
	}
	isLast := mem != nil && a.hasLast && off == a.last+arenaHeader

	if n == 0 {
		if isLast {
			a.used = a.last
			a.hasLast = false
		}
		return nil
	}

	start := a.used
	if isLast {
		start = a.last
	}
	chunk := buf.AlignUp(n+arenaHeader, ArenaAlign)
	if chunk > len(a.region)-start {
		logger.Debug("arena exhausted", "request", n, "remaining", len(a.region)-a.used)
		return nil
	}

	binary.LittleEndian.PutUint64(a.region[start:], uint64(n))
	binary.LittleEndian.PutUint64(a.region[start+8:], uint64(chunk))
	data := start + arenaHeader
	out := a.region[data : data+n : data+n]
	if mem != nil && !isLast {
		copy(out, mem)
	}
	a.last = start
	a.hasLast = true
	a.used = start + chunk
	return out
}

// Clear forgets every allocation. Memory handed out before must not be used.
func (a *Arena) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used = 0
	a.hasLast = false
}

// Release unmaps the region. The arena serves no requests afterwards.
func (a *Arena) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.region == nil {
		return ErrReleased
	}
	err := unmapRegion(a.region)
	a.region = nil
	a.used = 0
	a.hasLast = false
	if err != nil {
		return fmt.Errorf("release arena: %w", err)
	}
	return nil
}

// Size returns the region size in bytes.
func (a *Arena) Size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.region)
}

// Used returns the bytes consumed by chunks, headers included.
func (a *Arena) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Report implements Reporter.
func (a *Arena) Report() map[string]float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return map[string]float64{
		"region_bytes": float64(len(a.region)),
		"used_bytes":   float64(a.used),
	}
}
