package thread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/alloc"
)

const waitFor = 5 * time.Second

func newRoot(t *testing.T) *tree.Node {
	t.Helper()
	c := alloc.NewCounting(alloc.Heap{})
	root := tree.NewRoot(c)
	t.Cleanup(func() {
		if root.State() == tree.Live {
			root.Destroy()
		}
		blocks, bytes := c.Live()
		require.Zero(t, blocks, "leaked blocks")
		require.Zero(t, bytes, "leaked bytes")
	})
	return root
}

func requireInvariant(t *testing.T, fn func()) *tree.InvariantError {
	t.Helper()
	var got *tree.InvariantError
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected an invariant violation")
			err, ok := r.(*tree.InvariantError)
			require.True(t, ok, "panic value is %T: %v", r, r)
			got = err
		}()
		fn()
	}()
	return got
}

// requireClosed fails unless ch is closed within waitFor.
func requireClosed(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(waitFor):
		t.Fatalf("timed out: %s", msg)
	}
}

// requireOpen fails if ch closes within d.
func requireOpen(t *testing.T, ch <-chan struct{}, d time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("closed early: %s", msg)
	case <-time.After(d):
	}
}
