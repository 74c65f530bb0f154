package tree

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeakJoin_AcquireRelease(t *testing.T) {
	root, c := newCountingRoot(t)
	a := New(root)
	j := NewJoin(c, a)
	w := NewWeakJoin(root, j)

	assert.Equal(t, KindWeakJoin, w.Kind())
	assert.True(t, w.Available())
	assert.Equal(t, 1, j.NumParents(), "a weak join does not hold the join")

	got := w.Acquire()
	require.Same(t, j, got)
	assert.True(t, j.IsParent(w.Node))
	assert.Same(t, j, w.Acquire(), "acquiring twice holds once")
	assert.Equal(t, 2, j.NumParents())

	// The hold keeps the join alive after its last owner goes.
	a.Destroy()
	assert.Equal(t, Live, j.State())

	assert.True(t, w.Release())
	assert.Equal(t, Destroyed, j.State())
	assert.Empty(t, w.Children())
	assert.False(t, w.Available())
}

func TestWeakJoin_AcquireAfterDestroy(t *testing.T) {
	root, c := newCountingRoot(t)
	a := New(root)
	j := NewJoin(c, a)
	w := NewWeakJoin(root, j)

	a.Destroy()
	require.Equal(t, Destroyed, j.State())

	assert.False(t, w.Available())
	assert.Nil(t, w.Acquire())
	assert.False(t, w.Release())
	assert.Empty(t, w.Children(), "no callback left on the weak join")

	// A destroyed join cannot be referenced.
	requireInvariant(t, func() { NewWeakJoin(root, j) })
}

func TestWeakJoin_ReleaseWithoutAcquire(t *testing.T) {
	root, c := newCountingRoot(t)
	j := NewJoin(c, root)
	w := NewWeakJoin(root, j)

	assert.False(t, w.Release())
	assert.Equal(t, Live, j.State())
	assert.Equal(t, 1, j.NumParents())
}

func TestWeakJoin_DestroyReleasesHold(t *testing.T) {
	root, c := newCountingRoot(t)
	a := New(root)
	j := NewJoin(c, a)
	w := NewWeakJoin(root, j)
	require.NotNil(t, w.Acquire())

	require.True(t, j.Remove(a))
	require.Equal(t, Live, j.State())

	w.Destroy()
	assert.Equal(t, Destroyed, j.State())
}

func TestWeakJoin_DestroyUnregisters(t *testing.T) {
	root, c := newCountingRoot(t)
	j := NewJoin(c, root)
	w := NewWeakJoin(root, j)
	keep := NewWeakJoin(root, j)

	w.Destroy()
	j.Lock()
	weaks := j.weaks
	j.Unlock()
	require.Len(t, weaks, 1)
	assert.Same(t, keep, weaks[0])

	j.Release()
	assert.False(t, keep.Available())
}

func TestWeakJoin_ConcurrentAcquire(t *testing.T) {
	root, c := newCountingRoot(t)
	a := New(root)
	j := NewJoin(c, a)

	const holders = 8
	weaks := make([]*WeakJoin, holders)
	for i := range weaks {
		weaks[i] = NewWeakJoin(root, j)
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for _, w := range weaks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for range 200 {
				held := w.Acquire()
				if held == nil {
					return
				}
				assert.Equal(t, Live, held.State(), "an acquired join is live")
				held.Free(held.Alloc(1, 8))
				w.Release()
			}
		}()
	}

	close(start)
	a.Destroy()
	wg.Wait()

	for _, w := range weaks {
		if held := w.Acquire(); held != nil {
			w.Release()
		}
	}
	assert.Equal(t, Destroyed, j.State())
}
