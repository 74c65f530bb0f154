package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ownkit/tree/alloc"
)

func TestMoveAllocation(t *testing.T) {
	root, _ := newCountingRoot(t)
	a := New(root)
	b := New(root)
	deep := New(a)

	mem := deep.Alloc(1, 8)
	MoveAllocation(mem, root, b)
	assert.False(t, deep.Owns(mem))
	assert.True(t, b.Owns(mem))

	// Moving to the current owner is a no-op.
	MoveAllocation(mem, b, b)
	assert.Equal(t, 1, b.NumAllocations())

	MoveAllocation(nil, a, b)
}

func TestMoveAllocation_NotFound(t *testing.T) {
	root, _ := newCountingRoot(t)
	a := New(root)
	b := New(root)
	mem := b.Alloc(1, 1)

	err := requireInvariant(t, func() { MoveAllocation(mem, a, root) })
	assert.Equal(t, "MoveAllocation", err.Op)
	assert.True(t, b.Owns(mem))
}

func TestMoveAllocation_DestinationTearingDown(t *testing.T) {
	root, _ := newCountingRoot(t)
	mem := root.Alloc(1, 16)

	dst := New(root)
	child := New(dst)
	var state State
	child.OnDestroy(func(n *Node) {
		// dst is mid-teardown while its children go.
		state = dst.State()
		err := requireInvariant(t, func() { MoveAllocation(mem, root, dst) })
		assert.Contains(t, err.Error(), "destroying")
		Teardown(n)
	})
	dst.Destroy()

	assert.Equal(t, Destroying, state)
	assert.True(t, root.Owns(mem), "allocation stays with its owner")
	assert.Equal(t, 1, root.NumAllocations())
}

func TestMoveAllocation_AllocatorMismatch(t *testing.T) {
	root, _ := newCountingRoot(t)
	other := NewRoot(alloc.NewPool(alloc.PoolOptions{StartPools: 0}))
	defer other.Destroy()

	mem := root.Alloc(1, 1)
	requireInvariant(t, func() { MoveAllocation(mem, root, other) })
	assert.True(t, root.Owns(mem))
}

func TestMove_PreservesSubtree(t *testing.T) {
	root, _ := newCountingRoot(t)
	a := New(root)
	b := New(root)
	sub := New(a)
	leaf := New(sub)
	m1 := sub.Alloc(1, 4)
	m2 := leaf.Alloc(1, 4)

	Move(sub, b)

	assert.Empty(t, a.Children())
	assertNodes(t, []*Node{sub}, b.Children())
	assert.Same(t, b, sub.Parent())
	assertNodes(t, []*Node{leaf}, sub.Children())
	assert.True(t, sub.Owns(m1))
	assert.True(t, leaf.Owns(m2))

	b.Destroy()
	assert.Equal(t, Destroyed, leaf.State())
}

func TestMove_RejectsCycles(t *testing.T) {
	root, _ := newCountingRoot(t)
	a := New(root)
	b := New(a)
	c := New(b)

	for _, into := range []*Node{a, b, c} {
		err := requireInvariant(t, func() { Move(a, into) })
		assert.Equal(t, "Move", err.Op)
	}

	// Nothing changed.
	assertNodes(t, []*Node{a}, root.Children())
	assertNodes(t, []*Node{b}, a.Children())
	assertNodes(t, []*Node{c}, b.Children())
	assert.Same(t, root, a.Parent())
}

func TestMove_RejectsRootsAndMismatch(t *testing.T) {
	root, _ := newCountingRoot(t)
	a := New(root)
	other := NewRoot(alloc.NewPool(alloc.PoolOptions{StartPools: 0}))
	defer other.Destroy()

	requireInvariant(t, func() { Move(root, a) })
	requireInvariant(t, func() { Move(a, other) })
	assert.Same(t, root, a.Parent())
}

func TestMove_AcrossTreesWithSameAllocator(t *testing.T) {
	c := alloc.NewCounting(alloc.Heap{})
	r1 := NewRoot(c)
	r2 := NewRoot(c)
	n := New(r1)
	n.Alloc(1, 16)

	Move(n, r2)
	r1.Destroy()
	assert.Equal(t, Live, n.State())

	r2.Destroy()
	blocks, _ := c.Live()
	require.Zero(t, blocks)
}
