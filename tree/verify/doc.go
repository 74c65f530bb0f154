// Package verify checks the structural invariants of a live ownership tree.
//
// # Overview
//
// The checks walk the tree through its public accessors and report the first
// violation found. They are used by tests after every mutation and by
// `ownctl leakcheck` after every randomized step.
//
// Validation categories:
//   - Structure: every reachable node is live, carries a node kind, points
//     back at its parent and is reached exactly once
//   - Allocators: every child shares its parent's allocator
//   - Allocations: no allocation is empty and none is owned twice
//   - Accounting: the tree owns exactly the blocks a counting allocator
//     reports as live
//
// # Quick Start
//
//	if err := verify.AllInvariants(root); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// Compare against a counting allocator used only by this tree:
//
//	c := alloc.NewCounting(alloc.Heap{})
//	root := tree.NewRoot(c)
//	...
//	if err := verify.Accounting(root, c); err != nil {
//	    fmt.Printf("Leak: %v\n", err)
//	}
//
// # ValidationError
//
// All validation functions return *ValidationError on failure:
//
//	type ValidationError struct {
//	    Type    string         // Check that failed (e.g., "Structure")
//	    Message string         // Human-readable description
//	    Path    string         // Node path from the root ("" if N/A)
//	    Details map[string]any // Additional context
//	}
//
// Paths are slash separated; each step is the child index followed by the
// node name, or its kind when unnamed, e.g. "/0:config/2:NodeArray".
//
// # Concurrency
//
// The walk takes one node lock at a time. Verifying a tree that other
// goroutines are mutating reports spurious violations.
package verify
