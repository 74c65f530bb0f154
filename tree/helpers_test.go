package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ownkit/tree/alloc"
)

// requireInvariant runs fn and returns the *InvariantError it panics with.
func requireInvariant(t *testing.T, fn func()) *InvariantError {
	t.Helper()
	var got *InvariantError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected an invariant violation")
			err, ok := r.(*InvariantError)
			require.True(t, ok, "panic value is %T: %v", r, r)
			got = err
		}()
		fn()
	}()
	return got
}

// newCountingRoot returns a root over a counting heap and checks for leaks
// once the test has destroyed the root.
func newCountingRoot(t *testing.T) (*Node, *alloc.Counting) {
	t.Helper()
	c := alloc.NewCounting(alloc.Heap{})
	root := NewRoot(c)
	t.Cleanup(func() {
		if root.State() == Live {
			root.Destroy()
		}
		blocks, bytes := c.Live()
		require.Zero(t, blocks, "leaked blocks")
		require.Zero(t, bytes, "leaked bytes")
	})
	return root, c
}

// assertNodes checks that got holds exactly the nodes of want, in order,
// comparing identities rather than contents.
func assertNodes(t *testing.T, want, got []*Node) {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return
	}
	for i := range want {
		assert.Same(t, want[i], got[i], "node %d", i)
	}
}
