package hashmap

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"

	"github.com/joshuapare/ownkit/tree"
)

// HandleSize is the slot size of string keys.
const HandleSize = 8

// KeyOps describes how keys are hashed, compared and stored.
// key is always the lookup form passed by the caller; stored is a key slot
// of Size bytes inside the map.
type KeyOps struct {
	Size    int
	Hash    func(key []byte) uint32
	Equals  func(m *Map, key, stored []byte) bool
	Clone   func(m *Map, key, slot []byte)
	Release func(m *Map, slot []byte) // optional
}

// Hash32 hashes b with xxhash folded to 32 bits.
func Hash32(b []byte) uint32 {
	h := xxhash.Sum64(b)
	return uint32(h ^ h>>32)
}

// BytesOps stores keys of exactly size bytes inline.
func BytesOps(size int) KeyOps {
	return KeyOps{
		Size: size,
		Hash: func(key []byte) uint32 {
			if len(key) != size {
				tree.Panicf("hashmap.Hash", "key has %d bytes, map keys have %d", len(key), size)
			}
			return Hash32(key)
		},
		Equals: func(_ *Map, key, stored []byte) bool {
			return bytes.Equal(key, stored)
		},
		Clone: func(_ *Map, key, slot []byte) {
			copy(slot, key)
		},
	}
}

// StringOps stores a handle to a map-owned copy of each key.
func StringOps() KeyOps {
	return KeyOps{
		Size: HandleSize,
		Hash: Hash32,
		Equals: func(m *Map, key, stored []byte) bool {
			return bytes.Equal(key, m.blob(stored))
		},
		Clone: func(m *Map, key, slot []byte) {
			m.storeBlob(key, slot)
		},
		Release: func(m *Map, slot []byte) {
			m.releaseBlob(slot)
		},
	}
}

// FoldedStringOps is StringOps matching keys case-insensitively.
// The stored key keeps the spelling of its first insertion.
func FoldedStringOps() KeyOps {
	caser := cases.Fold()
	fold := func(b []byte) []byte {
		return caser.Bytes(b)
	}
	ops := StringOps()
	ops.Hash = func(key []byte) uint32 {
		return Hash32(fold(key))
	}
	ops.Equals = func(m *Map, key, stored []byte) bool {
		return bytes.Equal(fold(key), fold(m.blob(stored)))
	}
	return ops
}

type blobEntry struct {
	data []byte
	live bool
}

func handle(slot []byte) uint64 {
	return binary.LittleEndian.Uint64(slot)
}

// blob returns the string referenced by a key slot.
func (m *Map) blob(slot []byte) []byte {
	h := handle(slot)
	if h >= uint64(len(m.blobs)) || !m.blobs[h].live {
		tree.Panicf("hashmap.blob", "dangling key handle %d", h)
	}
	return m.blobs[h].data
}

// storeBlob copies key into memory owned by the map and writes its handle to slot.
func (m *Map) storeBlob(key, slot []byte) {
	data := m.Alloc(1, len(key))
	copy(data, key)

	var h uint64
	if n := len(m.free); n > 0 {
		h = m.free[n-1]
		m.free = m.free[:n-1]
		m.blobs[h] = blobEntry{data: data, live: true}
	} else {
		h = uint64(len(m.blobs))
		m.blobs = append(m.blobs, blobEntry{data: data, live: true})
	}
	binary.LittleEndian.PutUint64(slot, h)
}

func (m *Map) releaseBlob(slot []byte) {
	h := handle(slot)
	if h >= uint64(len(m.blobs)) || !m.blobs[h].live {
		tree.Panicf("hashmap.releaseBlob", "dangling key handle %d", h)
	}
	m.Free(m.blobs[h].data)
	m.blobs[h] = blobEntry{}
	m.free = append(m.free, h)
}
