// Package hashmap implements a hash map built from arrays and owned by a
// tree node.
//
// Pairs live densely in one array. Each pair is the key slot followed by
// the value, both padded to 8 bytes. The bucket table is a fixed array sized
// from the expected count at creation. Each slot holds the handle of an
// array of pair indices, created when the first key hashes there:
//
//	table[hash(key) % len(table)] -> [i, j, ...] -> pairs[i] = key | value
//
// Removing a pair shifts the later pairs down and decrements every stored
// index above it, so Remove is O(n). Indices stay dense: 0 <= i < Len.
//
// Keys are described by KeyOps. NewBytes stores fixed-size keys inline.
// NewStrings and NewFoldedStrings store an 8-byte handle to a copy of the
// string allocated on the map node, so destroying the map releases every key.
//
// A Map is not safe for concurrent use.
package hashmap
