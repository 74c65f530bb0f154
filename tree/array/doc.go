// Package array implements a growable buffer of fixed-size byte elements
// owned by a tree node.
//
// The buffer holds capacity+1 elements. Free slots may sit before the data
// (the front reserve) and after it, and the element right after the data is
// always zero so the buffer can be read as a terminated string:
//
//	memory: [ front reserve | data (Len) | 0 | back room ]
//	         <-------------- Cap + 1 elements ----------->
//
// Growth is governed by a Policy chosen at construction and changeable
// later with SetPolicy. Growth reallocates the buffer once through the
// owning node and moves the data to the front reserve chosen by the policy.
//
// Slices returned by Data, At and the append functions alias the buffer and
// are valid until the next operation that may grow or shift it.
//
// An Array is not safe for concurrent use. Callers serialize access with the
// lock of a node other than the array's own, since growth reallocates
// through the array node and takes its lock.
package array
