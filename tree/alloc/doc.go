// Package alloc provides the allocator capability every ownership tree is bound to.
//
// # Overview
//
// An allocator is a single realloc-shaped function plus whatever state the
// implementation needs. The tree package copies a root's allocator into every
// node created beneath it and routes every raw allocation through it.
//
// # Allocator Interface
//
// The core abstraction is the Allocator interface:
//
//   - Realloc(nil, size, n): allocate size*n bytes
//   - Realloc(mem, size, n): resize mem to size*n bytes
//   - Realloc(mem, 0, 0): free mem
//
// Realloc returns nil when the request cannot be served. The tree escalates
// that to a fatal diagnostic; the allocators never panic on exhaustion.
//
// # Identity
//
// Two allocators are identical when their interface values compare equal:
// the same implementation type and the same state pointer. Subtrees and raw
// allocations may only move between nodes bound to identical allocators.
// All Heap values are identical to each other.
//
// # Implementations
//
// Heap: Go heap passthrough
//
//   - Stateless, always identical to any other Heap
//   - Shrinking and growth within capacity reslice in place
//
// Pool: fixed-size blocks for many small allocations
//
//   - Requests up to BlockSize bytes are served from a LIFO free stack
//   - An empty stack allocates one more pool of BlocksInPool blocks
//   - Larger requests fall back to the heap
//   - Defaults: 256 byte blocks, 4096 blocks per pool (~1MB), 4 start pools
//
// Arena: bump allocation over one pre-allocated region
//
//   - The region is an anonymous mmap on linux and darwin
//   - Only the most recent allocation can be freed or grown in place
//   - Clear() forgets every allocation at once
//
// Counting: accounting wrapper around another allocator
//
//   - Tracks live blocks and bytes, used for leak checks in tests
//   - Optional byte limit to simulate exhaustion
//
// # Usage Example
//
//	pool := alloc.NewPool(alloc.DefaultPoolOptions())
//	root := tree.NewRoot(pool)
//	defer root.Destroy()
//
//	buf := root.Alloc(1, 64) // served from a pool block
//
// # Metrics
//
// Pool, Arena and Counting implement Reporter. NewCollector exposes a report
// as Prometheus gauges:
//
//	prometheus.MustRegister(alloc.NewCollector("ownkit", pool))
//
// # Thread Safety
//
// Every allocator in this package is safe for concurrent use.
package alloc
