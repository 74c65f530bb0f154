// Package tree implements the ownership tree: nodes that own raw allocations
// and child nodes, where destroying a node releases everything beneath it.
//
// # Overview
//
// Every raw allocation belongs to exactly one node and every node except a
// root belongs to exactly one parent. A root is bound to an allocator and
// every node created beneath it uses the same allocator.
//
//	root := tree.NewRoot(alloc.Heap{})
//	child := tree.New(root)
//	buf := child.Alloc(1, 64)
//
//	root.Destroy() // destroys child, frees buf
//
// # Finding Owners
//
// Any node from which the owner is reachable may resize or free an
// allocation. Realloc and Free search the receiver's own list first, then its
// descendants:
//
//	mem := root.Alloc(8, 4)
//	grandchild.Free(mem) // not found: mem is owned by an ancestor
//	root.Free(mem)       // ok
//
// # Moving
//
// MoveAllocation hands a raw allocation to another node and Move reparents a
// whole subtree. Neither copies. Both require identical allocators; Move
// rejects cycles before touching anything.
//
// # Kinds
//
// A node carries a kind tag. Kinds extend by suffix, so a "NodeArray" is also
// a "Node". Every entry point checks the receiver's kind and a mismatch is an
// invariant violation. Destroyed nodes have an empty kind, which turns use
// after destroy into a kind mismatch.
//
// # Destroy
//
// Destroy detaches a node from its parent and runs its destroy function.
// The default is Teardown: children first in order, then the node's own
// allocations, then the node itself. Kinds built on a node install their own
// destroy function with OnDestroy and call Teardown at the end.
//
// # Failure Model
//
// Invariant violations panic with *InvariantError after logging the
// diagnostic. They indicate a corrupted or misused tree and are not meant to
// be recovered. Allocator exhaustion panics the same way in Alloc and
// Realloc; TryAlloc and TryRealloc return ErrOutOfMemory instead.
//
// # Locking
//
// Each node has one non-recursive mutex guarding its child and allocation
// lists. Operations touching two nodes never hold both locks at once: the
// source is locked and released before the destination. Searches lock one
// node at a time in pre-order. Concurrent topology changes inside the same
// subtree are the caller's responsibility.
package tree
