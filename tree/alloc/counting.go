package alloc

import (
	"sync"

	"github.com/joshuapare/ownkit/internal/logger"
)

// Counting wraps an allocator and tracks its live blocks.
// It is what leak checks are written against: after a root is destroyed
// Live must report zero blocks.
type Counting struct {
	mu        sync.Mutex
	inner     Allocator
	live      map[*byte]int
	liveBytes int
	allocs    uint64
	frees     uint64
	limit     int
}

// NewCounting wraps inner.
func NewCounting(inner Allocator) *Counting {
	return &Counting{
		inner: inner,
		live:  make(map[*byte]int),
	}
}

// Name implements Allocator.
func (c *Counting) Name() string { return "counting/" + c.inner.Name() }

// Inner returns the wrapped allocator.
func (c *Counting) Inner() Allocator { return c.inner }

// SetLimit caps the live bytes. Requests that would exceed the cap fail.
// Zero removes the cap.
func (c *Counting) SetLimit(bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limit = bytes
}

// Realloc implements Allocator.
func (c *Counting) Realloc(mem []byte, elementSize, count int) []byte {
	n, ok := requestSize(c.Name(), elementSize, count)
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := Addr(mem)
	if n > 0 && c.limit > 0 {
		if c.liveBytes-c.live[key]+n > c.limit {
			return nil
		}
	}

	out := c.inner.Realloc(mem, elementSize, count)
	if n > 0 && out == nil {
		return nil
	}

	if mem != nil {
		old, tracked := c.live[key]
		if tracked {
			delete(c.live, key)
			c.liveBytes -= old
		} else {
			logger.Warn("counting allocator saw an untracked block", "allocator", c.inner.Name())
		}
		if n == 0 {
			c.frees++
		}
	}
	if out != nil {
		c.live[Addr(out)] = n
		c.liveBytes += n
		if mem == nil {
			c.allocs++
		}
	}
	return out
}

// Live returns the outstanding blocks and bytes.
func (c *Counting) Live() (blocks, bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live), c.liveBytes
}

// Totals returns the allocations and frees seen so far.
func (c *Counting) Totals() (allocs, frees uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocs, c.frees
}

// Report implements Reporter.
func (c *Counting) Report() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]float64{
		"live_blocks":       float64(len(c.live)),
		"live_bytes":        float64(c.liveBytes),
		"allocations_total": float64(c.allocs),
		"frees_total":       float64(c.frees),
	}
}
