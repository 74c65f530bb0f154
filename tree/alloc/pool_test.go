package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()
	return NewPool(PoolOptions{BlockSize: 32, BlocksInPool: 4, StartPools: 1})
}

func TestPool_Defaults(t *testing.T) {
	p := NewPool(DefaultPoolOptions())
	assert.Equal(t, 256, p.BlockSize())
	assert.Equal(t, 4096, p.BlocksInPool())
	assert.Equal(t, 4, p.Pools())
	assert.Equal(t, 4*4096, p.BlocksAvailable())
	assert.Equal(t, 0, p.BlocksUsed())
}

func TestPool_ServesBlocks(t *testing.T) {
	p := newTestPool(t)

	mem := p.Realloc(nil, 1, 10)
	require.Len(t, mem, 10)
	assert.Equal(t, 32, cap(mem))
	assert.True(t, p.Pooled(mem))
	assert.Equal(t, 1, p.BlocksUsed())
	assert.Equal(t, 3, p.BlocksAvailable())

	// Growth inside the block keeps the address.
	grown := p.Realloc(mem, 1, 32)
	require.Len(t, grown, 32)
	assert.Same(t, Addr(mem), Addr(grown))

	assert.Nil(t, p.Realloc(grown, 0, 0))
	assert.Equal(t, 0, p.BlocksUsed())
}

func TestPool_LIFO(t *testing.T) {
	p := newTestPool(t)

	a := p.Realloc(nil, 1, 8)
	b := p.Realloc(nil, 1, 8)
	require.NotSame(t, Addr(a), Addr(b))

	p.Realloc(a, 0, 0)
	c := p.Realloc(nil, 1, 8)
	assert.Same(t, Addr(a), Addr(c), "most recently freed block is reused first")
}

func TestPool_AddsPoolWhenExhausted(t *testing.T) {
	p := newTestPool(t)

	var blocks [][]byte
	for range 4 {
		blocks = append(blocks, p.Realloc(nil, 1, 16))
	}
	assert.Equal(t, 1, p.Pools())
	assert.Equal(t, 0, p.BlocksAvailable())

	extra := p.Realloc(nil, 1, 16)
	require.NotNil(t, extra)
	assert.True(t, p.Pooled(extra))
	assert.Equal(t, 2, p.Pools())
	assert.Equal(t, 5, p.BlocksUsed())

	for _, b := range append(blocks, extra) {
		p.Realloc(b, 0, 0)
	}
	assert.Equal(t, 0, p.BlocksUsed())
	assert.Equal(t, 8, p.BlocksAvailable())
}

func TestPool_OversizedFallsBackToHeap(t *testing.T) {
	p := newTestPool(t)

	big := p.Realloc(nil, 1, 100)
	require.Len(t, big, 100)
	assert.False(t, p.Pooled(big))
	assert.Equal(t, 0, p.BlocksUsed())

	// Shrinking heap memory keeps it on the heap.
	small := p.Realloc(big, 1, 8)
	assert.False(t, p.Pooled(small))
	assert.Nil(t, p.Realloc(small, 0, 0))
}

func TestPool_PooledToOversizedCopies(t *testing.T) {
	p := newTestPool(t)

	mem := p.Realloc(nil, 1, 16)
	for i := range mem {
		mem[i] = byte(i + 1)
	}

	big := p.Realloc(mem, 1, 64)
	require.Len(t, big, 64)
	assert.False(t, p.Pooled(big))
	assert.Equal(t, mem, big[:16])
	assert.Equal(t, 0, p.BlocksUsed(), "block returned to the stack")
}

func TestPool_DoubleFreeIsIgnored(t *testing.T) {
	p := newTestPool(t)

	a := p.Realloc(nil, 1, 8)
	_ = p.Realloc(nil, 1, 8)
	p.Realloc(a, 0, 0)
	p.Realloc(a, 0, 0)

	assert.Equal(t, 1, p.BlocksUsed())
	assert.Equal(t, 3, p.BlocksAvailable())
}

func TestPool_MisalignedPointerPanics(t *testing.T) {
	p := newTestPool(t)

	mem := p.Realloc(nil, 1, 16)
	assert.Panics(t, func() {
		p.Realloc(mem[4:], 0, 0)
	})
}

func TestPool_Report(t *testing.T) {
	p := newTestPool(t)
	p.Realloc(nil, 1, 1)

	r := p.Report()
	assert.Equal(t, 32.0, r["block_size"])
	assert.Equal(t, 4.0, r["blocks_in_pool"])
	assert.Equal(t, 1.0, r["pools"])
	assert.Equal(t, 3.0, r["blocks_available"])
	assert.Equal(t, 1.0, r["blocks_used"])
}

func TestPool_Release(t *testing.T) {
	p := newTestPool(t)
	p.Release()
	assert.Equal(t, 0, p.Pools())

	mem := p.Realloc(nil, 1, 8)
	require.NotNil(t, mem, "a released pool grows again on demand")
	assert.Equal(t, 1, p.Pools())
}
