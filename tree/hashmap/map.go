package hashmap

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/ownkit/internal/buf"
	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/array"
)

// Kind is the node kind of maps.
const Kind = "NodeMap"

const (
	indexSize         = 8
	bucketStartLength = 4
	slotAlign         = 8
)

// Map is a node owning a pairs array and its buckets.
type Map struct {
	*tree.Node
	ops       KeyOps
	keySlot   int // aligned key slot size
	valueSize int
	pairs     *array.Array
	table     *array.Array   // fixed; bucket handles, 0 until the first key hashes there
	lists     []*array.Array // bucket index arrays, by handle-1
	blobs     []blobEntry
	free      []uint64
}

// New creates a map child of parent. approxNum sizes the bucket table and
// the initial pairs capacity; it is not a limit.
func New(parent *tree.Node, ops KeyOps, valueSize, approxNum int) *Map {
	if ops.Size <= 0 || ops.Hash == nil || ops.Equals == nil || ops.Clone == nil {
		tree.Panicf("hashmap.New", "incomplete key operations")
	}
	if valueSize < 0 {
		tree.Panicf("hashmap.New", "negative value size %d", valueSize)
	}
	approxNum = max(approxNum, 1)

	n := tree.New(parent)
	n.SetKind(Kind)
	m := &Map{
		Node:      n,
		ops:       ops,
		keySlot:   buf.AlignUp(ops.Size, slotAlign),
		valueSize: valueSize,
	}
	n.Bind(m)
	pairSize := m.keySlot + buf.AlignUp(valueSize, slotAlign)
	m.pairs = array.NewDyn(n, nil, pairSize, 0, approxNum)
	m.table = array.New(n, nil, indexSize, approxNum, approxNum, array.GrowFixed)
	return m
}

// NewBytes creates a map with fixed-size byte keys.
func NewBytes(parent *tree.Node, keySize, valueSize, approxNum int) *Map {
	return New(parent, BytesOps(keySize), valueSize, approxNum)
}

// NewStrings creates a map with string keys.
func NewStrings(parent *tree.Node, valueSize, approxNum int) *Map {
	return New(parent, StringOps(), valueSize, approxNum)
}

// NewFoldedStrings creates a map with case-insensitive string keys.
func NewFoldedStrings(parent *tree.Node, valueSize, approxNum int) *Map {
	return New(parent, FoldedStringOps(), valueSize, approxNum)
}

// From returns the map bound to n. n must be a map node.
func From(n *tree.Node) *Map {
	return tree.Cast[*Map](n, Kind)
}

// Len returns the number of pairs.
func (m *Map) Len() int {
	m.Check("hashmap.Len", Kind)
	return m.pairs.Len()
}

// ValueSize returns the size of one value in bytes.
func (m *Map) ValueSize() int { return m.valueSize }

// Describe summarizes the map for tree dumps.
func (m *Map) Describe() string {
	return fmt.Sprintf("map: %d pairs, %d buckets, key %d bytes, value %d bytes",
		m.Len(), m.table.Len(), m.ops.Size, m.valueSize)
}

// Buckets returns the fixed bucket count.
func (m *Map) Buckets() int {
	m.Check("hashmap.Buckets", Kind)
	return m.table.Len()
}

// KeyAt returns the key slot of pair i.
func (m *Map) KeyAt(i int) []byte {
	m.Check("hashmap.KeyAt", Kind)
	return m.pairs.At(i)[:m.ops.Size]
}

// ValueAt returns the value of pair i.
func (m *Map) ValueAt(i int) []byte {
	m.Check("hashmap.ValueAt", Kind)
	return m.pairs.At(i)[m.keySlot : m.keySlot+m.valueSize]
}

func (m *Map) bucketOf(key []byte) int {
	return int(m.ops.Hash(key) % uint32(m.table.Len()))
}

// bucket returns the index array of bucket b, or nil while it is empty.
func (m *Map) bucket(b int) *array.Array {
	h := binary.LittleEndian.Uint64(m.table.At(b))
	if h == 0 {
		return nil
	}
	return m.lists[h-1]
}

// lookup returns the pair index of key and its position in the bucket.
func (m *Map) lookup(b int, key []byte) (int, int) {
	list := m.bucket(b)
	if list == nil {
		return -1, -1
	}
	for pos := range list.Len() {
		idx := int(binary.LittleEndian.Uint64(list.At(pos)))
		if m.ops.Equals(m, key, m.pairs.At(idx)[:m.ops.Size]) {
			return idx, pos
		}
	}
	return -1, -1
}

// GetIndex returns the pair index of key, or -1.
func (m *Map) GetIndex(key []byte) int {
	m.Check("hashmap.GetIndex", Kind)
	idx, _ := m.lookup(m.bucketOf(key), key)
	return idx
}

// Get returns the value of key.
func (m *Map) Get(key []byte) ([]byte, bool) {
	idx := m.GetIndex(key)
	if idx < 0 {
		return nil, false
	}
	return m.ValueAt(idx), true
}

// Set stores value under key, cloning the key on first insertion, and
// returns the pair index. value must hold at least ValueSize bytes.
func (m *Map) Set(key, value []byte) int {
	m.Check("hashmap.Set", Kind)
	if len(value) < m.valueSize {
		tree.Panicf("hashmap.Set", "value has %d bytes, map values have %d", len(value), m.valueSize)
	}

	b := m.bucketOf(key)
	idx, _ := m.lookup(b, key)
	if idx < 0 {
		list := m.bucket(b)
		if list == nil {
			list = array.NewDyn(m.Node, nil, indexSize, 0, bucketStartLength)
			m.lists = append(m.lists, list)
			binary.LittleEndian.PutUint64(m.table.At(b), uint64(len(m.lists)))
		}
		pair := m.pairs.Push(nil)
		m.ops.Clone(m, key, pair[:m.ops.Size])
		idx = m.pairs.Len() - 1

		var entry [indexSize]byte
		binary.LittleEndian.PutUint64(entry[:], uint64(idx))
		list.Push(entry[:])
	}
	copy(m.ValueAt(idx), value[:m.valueSize])
	return idx
}

// Remove deletes key and reports whether it was present. Every stored index
// above the removed one is decremented.
func (m *Map) Remove(key []byte) bool {
	m.Check("hashmap.Remove", Kind)
	b := m.bucketOf(key)
	idx, pos := m.lookup(b, key)
	if idx < 0 {
		return false
	}

	if m.ops.Release != nil {
		m.ops.Release(m, m.pairs.At(idx)[:m.ops.Size])
	}
	m.pairs.RemoveAt(idx, nil, 1)
	m.bucket(b).RemoveAt(pos, nil, 1)

	for _, list := range m.lists {
		for i := range list.Len() {
			entry := list.At(i)
			if v := binary.LittleEndian.Uint64(entry); v > uint64(idx) {
				binary.LittleEndian.PutUint64(entry, v-1)
			}
		}
	}
	return true
}

// GetString returns the value of a string key.
func (m *Map) GetString(key string) ([]byte, bool) {
	return m.Get([]byte(key))
}

// SetString stores value under a string key.
func (m *Map) SetString(key string, value []byte) int {
	return m.Set([]byte(key), value)
}

// RemoveString deletes a string key.
func (m *Map) RemoveString(key string) bool {
	return m.Remove([]byte(key))
}

// StringKeyAt returns the string key of pair i in a string-keyed map.
func (m *Map) StringKeyAt(i int) string {
	if m.ops.Size != HandleSize || m.ops.Release == nil {
		tree.Panicf("hashmap.StringKeyAt", "map does not have string keys")
	}
	return string(m.blob(m.KeyAt(i)))
}
