package alloc

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/joshuapare/ownkit/internal/logger"
)

const (
	// DefaultBlockSize is the pooled block size in bytes.
	DefaultBlockSize = 256

	// DefaultBlocksInPool gives ~1MB pools with the default block size.
	DefaultBlocksInPool = 4096

	// DefaultStartPools is the number of pools allocated up front.
	DefaultStartPools = 4
)

// PoolOptions configures a Pool.
type PoolOptions struct {
	BlockSize    int // bytes per block
	BlocksInPool int // blocks carved from each pool
	StartPools   int // pools allocated by NewPool
}

// DefaultPoolOptions returns 256 byte blocks, 4096 blocks per pool, 4 pools.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		BlockSize:    DefaultBlockSize,
		BlocksInPool: DefaultBlocksInPool,
		StartPools:   DefaultStartPools,
	}
}

// Pool serves small requests from fixed-size blocks and larger requests
// from the heap.
type Pool struct {
	mu           sync.Mutex
	blockSize    int
	blocksInPool int
	pools        [][]byte
	inUse        []bool   // indexed by pool*blocksInPool + block
	free         [][]byte // LIFO stack of available blocks
}

// NewPool creates a pool allocator. Zero option fields take their defaults.
func NewPool(opts PoolOptions) *Pool {
	def := DefaultPoolOptions()
	if opts.BlockSize <= 0 {
		opts.BlockSize = def.BlockSize
	}
	if opts.BlocksInPool <= 0 {
		opts.BlocksInPool = def.BlocksInPool
	}
	if opts.StartPools < 0 {
		opts.StartPools = 0
	}
	p := &Pool{
		blockSize:    opts.BlockSize,
		blocksInPool: opts.BlocksInPool,
	}
	for range opts.StartPools {
		p.addPool()
	}
	return p
}

// Name implements Allocator.
func (p *Pool) Name() string { return "pool" }

// addPool carves one more pool into blocks and pushes them on the stack.
// Caller holds p.mu.
func (p *Pool) addPool() {
	region := make([]byte, p.blockSize*p.blocksInPool)
	p.pools = append(p.pools, region)
	p.inUse = append(p.inUse, make([]bool, p.blocksInPool)...)
	for i := p.blocksInPool - 1; i >= 0; i-- {
		p.free = append(p.free, p.block(region, i))
	}
	logger.Debug("pool allocated",
		"pools", len(p.pools),
		"block_size", p.blockSize,
		"blocks_in_pool", p.blocksInPool)
}

func (p *Pool) block(region []byte, i int) []byte {
	off := i * p.blockSize
	return region[off : off+p.blockSize : off+p.blockSize]
}

// locate finds the pool and block index of mem.
// A pointer inside a pool that is not on a block boundary is fatal.
// Caller holds p.mu.
func (p *Pool) locate(mem []byte) (int, int, bool) {
	addr := Addr(mem)
	if addr == nil {
		return 0, 0, false
	}
	ptr := uintptr(unsafe.Pointer(addr))
	size := uintptr(p.blockSize * p.blocksInPool)
	for pi, region := range p.pools {
		base := uintptr(unsafe.Pointer(unsafe.SliceData(region)))
		if ptr < base || ptr >= base+size {
			continue
		}
		off := ptr - base
		if off%uintptr(p.blockSize) != 0 {
			logger.Error("pointer inside pool is not on a block boundary", "pool", pi, "offset", off)
			panic(fmt.Sprintf("alloc: pointer at offset %d of pool %d is not a block", off, pi))
		}
		return pi, int(off / uintptr(p.blockSize)), true
	}
	return 0, 0, false
}

// Pooled reports whether mem is a block of this pool.
func (p *Pool) Pooled(mem []byte) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _, ok := p.locate(mem)
	return ok
}

// push returns a block to the stack. Caller holds p.mu.
func (p *Pool) push(pi, bi int) {
	idx := pi*p.blocksInPool + bi
	if !p.inUse[idx] || len(p.free) >= len(p.inUse) {
		logger.Error("double free of pooled block", "pool", pi, "block", bi)
		return
	}
	p.inUse[idx] = false
	p.free = append(p.free, p.block(p.pools[pi], bi))
}

// pop takes a block from the stack, adding a pool when empty. Caller holds p.mu.
func (p *Pool) pop() []byte {
	if len(p.free) == 0 {
		p.addPool()
	}
	blk := p.free[len(p.free)-1]
	p.free[len(p.free)-1] = nil
	p.free = p.free[:len(p.free)-1]
	pi, bi, _ := p.locate(blk)
	p.inUse[pi*p.blocksInPool+bi] = true
	return blk
}

// Realloc implements Allocator.
func (p *Pool) Realloc(mem []byte, elementSize, count int) []byte {
	n, ok := requestSize(p.Name(), elementSize, count)
	if !ok {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pi, bi, pooled := p.locate(mem)

	if n == 0 {
		if pooled {
			p.push(pi, bi)
		}
		return nil
	}

	if n <= p.blockSize {
		switch {
		case pooled:
			return p.block(p.pools[pi], bi)[:n]
		case mem != nil:
			// heap memory shrunk below the block size stays on the heap
			return Heap{}.Realloc(mem, 1, n)
		default:
			return p.pop()[:n]
		}
	}

	if pooled {
		out := make([]byte, n)
		copy(out, mem)
		p.push(pi, bi)
		return out
	}
	return Heap{}.Realloc(mem, 1, n)
}

// BlockSize returns the bytes per block.
func (p *Pool) BlockSize() int { return p.blockSize }

// BlocksInPool returns the blocks carved from each pool.
func (p *Pool) BlocksInPool() int { return p.blocksInPool }

// Pools returns the number of pools allocated so far.
func (p *Pool) Pools() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools)
}

// BlocksAvailable returns the number of blocks on the free stack.
func (p *Pool) BlocksAvailable() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// BlocksUsed returns the number of blocks handed out.
func (p *Pool) BlocksUsed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inUse) - len(p.free)
}

// Report implements Reporter.
func (p *Pool) Report() map[string]float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return map[string]float64{
		"block_size":       float64(p.blockSize),
		"blocks_in_pool":   float64(p.blocksInPool),
		"pools":            float64(len(p.pools)),
		"blocks_available": float64(len(p.free)),
		"blocks_used":      float64(len(p.inUse) - len(p.free)),
	}
}

// Release drops every pool. Heap memory handed out for oversized requests
// is unaffected; pooled blocks must not be used afterwards.
func (p *Pool) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pools = nil
	p.inUse = nil
	p.free = nil
}
