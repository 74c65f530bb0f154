package tree

import (
	"github.com/joshuapare/ownkit/tree/alloc"
)

// MoveAllocation hands mem from its owner, found under from, to the node to.
// The allocation is not copied. A missing owner or differing allocators are
// invariant violations. A nil mem is a no-op.
func MoveAllocation(mem []byte, from, to *Node) {
	if mem == nil {
		return
	}
	from.Check("MoveAllocation", KindNode)
	to.Check("MoveAllocation", KindNode)
	if !alloc.Identical(from.alloc, to.alloc) {
		Panicf("MoveAllocation", "allocators differ: %s and %s", from.alloc.Name(), to.alloc.Name())
	}

	addr := alloc.Addr(mem)
	owner := from.findOwner(addr, MaxDepth)
	if owner == nil {
		Panicf("MoveAllocation", "allocation is not owned under the source node")
	}
	if owner == to {
		return
	}
	if state := to.State(); state != Live {
		Panicf("MoveAllocation", "destination is %s", state)
	}

	owner.mu.Lock()
	i := owner.allocIndex(addr)
	if i < 0 {
		owner.mu.Unlock()
		Panicf("MoveAllocation", "allocation moved concurrently")
	}
	entry := owner.allocs[i]
	owner.allocs = append(owner.allocs[:i], owner.allocs[i+1:]...)
	owner.mu.Unlock()

	to.mu.Lock()
	if to.state == Live {
		to.allocs = append(to.allocs, entry)
		to.mu.Unlock()
		return
	}
	state := to.state
	to.mu.Unlock()

	// The destination started tearing down after the check above; the
	// allocation stays with its owner.
	owner.mu.Lock()
	if owner.state != Destroyed {
		owner.allocs = append(owner.allocs, entry)
	} else {
		owner.alloc.Realloc(entry, 0, 0)
	}
	owner.mu.Unlock()
	Panicf("MoveAllocation", "destination is %s", state)
}

// Move reparents n under into, appending it to into's children.
// Moving a root, moving a node under itself or one of its descendants, and
// moving between differing allocators are invariant violations; each is
// detected before anything changes.
func Move(n, into *Node) {
	n.Check("Move", KindNode)
	into.Check("Move", KindNode)

	parent := n.Parent()
	if parent == nil {
		Panicf("Move", "cannot move a root")
	}
	if !alloc.Identical(parent.alloc, into.alloc) {
		Panicf("Move", "allocators differ: %s and %s", parent.alloc.Name(), into.alloc.Name())
	}
	for a := into; a != nil; a = a.Parent() {
		if a == n {
			Panicf("Move", "destination is inside the moved subtree")
		}
	}
	if into.State() != Live {
		Panicf("Move", "destination is %s", into.State())
	}

	parent.mu.Lock()
	parent.removeChild(n)
	parent.mu.Unlock()

	into.mu.Lock()
	into.children = append(into.children, n)
	into.mu.Unlock()

	n.mu.Lock()
	n.parent = into
	n.mu.Unlock()
}
