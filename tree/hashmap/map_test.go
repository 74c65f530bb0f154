package hashmap

import (
	"encoding/binary"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/alloc"
	"github.com/joshuapare/ownkit/tree/array"
)

func newRoot(t *testing.T) (*tree.Node, *alloc.Counting) {
	t.Helper()
	c := alloc.NewCounting(alloc.Heap{})
	root := tree.NewRoot(c)
	t.Cleanup(func() {
		root.Destroy()
		blocks, _ := c.Live()
		require.Zero(t, blocks, "leaked blocks")
	})
	return root, c
}

// requireConsistent checks that every pair index sits in exactly one
// bucket, the one its key hashes to.
func requireConsistent(t *testing.T, m *Map, lookupKey func(i int) []byte) {
	t.Helper()
	seen := make(map[uint64]int)
	for b := range m.Buckets() {
		list := m.bucket(b)
		if list == nil {
			continue
		}
		for pos := range list.Len() {
			idx := binary.LittleEndian.Uint64(list.At(pos))
			require.Less(t, idx, uint64(m.Len()))
			seen[idx]++
			require.Equal(t, b, m.bucketOf(lookupKey(int(idx))), "index %d in the wrong bucket", idx)
		}
	}
	require.Len(t, seen, m.Len())
	for idx, n := range seen {
		require.Equal(t, 1, n, "index %d appears %d times", idx, n)
	}
}

func key32(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func TestNew(t *testing.T) {
	root, _ := newRoot(t)
	m := NewBytes(root, 4, 3, 16)

	assert.Equal(t, Kind, m.Kind())
	assert.Equal(t, 16, m.Buckets())
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 8+8, m.pairs.ElementSize(), "key and value padded to 8 bytes")
	assert.Same(t, m, From(m.Node))

	assert.Equal(t, 1, NewBytes(root, 4, 4, 0).Buckets())
	assert.Panics(t, func() { New(root, KeyOps{Size: 4}, 4, 4) })
}

func TestBucketTable(t *testing.T) {
	root, _ := newRoot(t)
	m := NewBytes(root, 4, 4, 8)

	require.Equal(t, array.Kind, m.table.Kind())
	assert.Equal(t, array.GrowFixed, m.table.Policy())
	assert.Equal(t, 8, m.table.Len())
	assert.Equal(t, make([]byte, 8*indexSize), m.table.Data(), "no bucket before the first key")
	assert.Equal(t, 2, m.NumChildren(), "pairs and table only")

	for i := range uint32(32) {
		m.Set(key32(i), key32(i*3))
	}
	assert.Equal(t, 8, m.table.Len(), "the table never grows")
	assert.Equal(t, 2+len(m.lists), m.NumChildren())
	for b := range m.Buckets() {
		h := binary.LittleEndian.Uint64(m.table.At(b))
		if h == 0 {
			continue
		}
		require.LessOrEqual(t, h, uint64(len(m.lists)))
		assert.Same(t, m.lists[h-1], m.bucket(b))
	}
	requireConsistent(t, m, func(i int) []byte { return m.KeyAt(i) })
}

func TestSetGet_RoundTrip(t *testing.T) {
	root, _ := newRoot(t)
	m := NewBytes(root, 4, 8, 4)

	value := []byte{0, 0, 1, 0, 0, 0, 0xFF, 0}
	idx := m.Set(key32(7), value)
	assert.Equal(t, 0, idx)
	assert.Equal(t, value, m.ValueAt(m.GetIndex(key32(7))))
	assert.Equal(t, key32(7), m.KeyAt(idx))

	zero := make([]byte, 8)
	assert.Equal(t, idx, m.Set(key32(7), zero), "overwrite keeps the index")
	got, ok := m.Get(key32(7))
	require.True(t, ok)
	assert.Equal(t, zero, got)
	assert.Equal(t, 1, m.Len())

	_, ok = m.Get(key32(8))
	assert.False(t, ok)
	assert.Equal(t, -1, m.GetIndex(key32(8)))
}

func TestRemove_DecrementsIndices(t *testing.T) {
	root, _ := newRoot(t)
	m := NewBytes(root, 4, 4, 2)

	for i := range uint32(5) {
		m.Set(key32(i), key32(i*10))
	}
	require.True(t, m.Remove(key32(1)))
	assert.False(t, m.Remove(key32(1)))

	assert.Equal(t, 4, m.Len())
	assert.Equal(t, 0, m.GetIndex(key32(0)))
	assert.Equal(t, 1, m.GetIndex(key32(2)))
	assert.Equal(t, 2, m.GetIndex(key32(3)))
	assert.Equal(t, 3, m.GetIndex(key32(4)))
	assert.Equal(t, key32(40), m.ValueAt(3))
	requireConsistent(t, m, m.KeyAt)
}

func TestRandomOps_MatchModel(t *testing.T) {
	root, _ := newRoot(t)
	m := NewBytes(root, 4, 8, 3)
	model := make(map[uint32][]byte)
	rng := rand.New(rand.NewPCG(7, 11))

	for range 2000 {
		k := rng.Uint32N(64)
		if rng.IntN(3) == 0 {
			_, present := model[k]
			assert.Equal(t, present, m.Remove(key32(k)))
			delete(model, k)
		} else {
			v := make([]byte, 8)
			for i := range v {
				if rng.IntN(2) == 0 {
					v[i] = byte(rng.IntN(256))
				}
			}
			idx := m.Set(key32(k), v)
			assert.Equal(t, v, m.ValueAt(idx))
			model[k] = v
		}
		require.Equal(t, len(model), m.Len())
	}

	requireConsistent(t, m, m.KeyAt)
	for k := range uint32(64) {
		got, ok := m.Get(key32(k))
		want, present := model[k]
		require.Equal(t, present, ok, "key %d", k)
		if present {
			idx := m.GetIndex(key32(k))
			require.Equal(t, key32(k), m.KeyAt(idx))
			require.Equal(t, want, got)
		}
	}
}

func TestBytes_WrongKeySize(t *testing.T) {
	root, _ := newRoot(t)
	m := NewBytes(root, 4, 4, 4)
	assert.Panics(t, func() { m.Set([]byte{1, 2}, key32(1)) })
	assert.Panics(t, func() { m.Set(key32(1), []byte{1}) }, "short value")
	assert.Panics(t, func() { m.StringKeyAt(0) })
}

func TestStrings(t *testing.T) {
	root, c := newRoot(t)
	m := NewStrings(root, 4, 8)

	m.SetString("alpha", key32(1))
	m.SetString("beta", key32(2))
	m.SetString("", key32(3))
	assert.Equal(t, 3, m.Len())

	v, ok := m.GetString("beta")
	require.True(t, ok)
	assert.Equal(t, key32(2), v)
	assert.Equal(t, "alpha", m.StringKeyAt(0))
	assert.Equal(t, "", m.StringKeyAt(2))
	_, ok = m.GetString("Alpha")
	assert.False(t, ok)

	before, _ := c.Live()
	require.True(t, m.RemoveString("alpha"))
	after, _ := c.Live()
	assert.Equal(t, before-1, after, "removed key copy freed")
	assert.Equal(t, "beta", m.StringKeyAt(0))

	// The freed handle is reused.
	m.SetString("gamma", key32(4))
	assert.Len(t, m.blobs, 3)
	assert.Equal(t, "gamma", m.StringKeyAt(2))
	requireConsistent(t, m, func(i int) []byte { return []byte(m.StringKeyAt(i)) })
}

func TestStrings_KeyCopied(t *testing.T) {
	root, _ := newRoot(t)
	m := NewStrings(root, 0, 4)

	key := []byte("mutable")
	m.Set(key, nil)
	key[0] = 'M'
	assert.Equal(t, "mutable", m.StringKeyAt(0))
	assert.Equal(t, 0, m.GetIndex([]byte("mutable")))
	assert.Empty(t, m.ValueAt(0))
}

func TestFoldedStrings(t *testing.T) {
	root, _ := newRoot(t)
	m := NewFoldedStrings(root, 4, 8)

	m.SetString("Hello", key32(1))
	idx := m.SetString("HELLO", key32(2))
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "Hello", m.StringKeyAt(0), "first spelling kept")

	v, ok := m.GetString("hello")
	require.True(t, ok)
	assert.Equal(t, key32(2), v)

	m.SetString("straße", key32(3))
	assert.Equal(t, 1, m.GetIndex([]byte("STRASSE")))

	assert.True(t, m.RemoveString("hELLo"))
	assert.Equal(t, 0, m.GetIndex([]byte("Strasse")))
}

func TestDestroyReleasesKeys(t *testing.T) {
	c := alloc.NewCounting(alloc.Heap{})
	root := tree.NewRoot(c)
	m := NewStrings(root, 8, 4)
	for _, k := range []string{"a", "bb", "ccc", "dddd"} {
		m.SetString(k, make([]byte, 8))
	}

	m.Destroy()
	blocks, _ := c.Live()
	assert.Zero(t, blocks)
	assert.Panics(t, func() { m.GetString("a") })
	root.Destroy()
}
