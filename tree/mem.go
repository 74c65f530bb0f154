package tree

import (
	"fmt"
	"math"
	"slices"

	"github.com/joshuapare/ownkit/internal/buf"
	"github.com/joshuapare/ownkit/tree/alloc"
)

// MaxDepth searches a whole subtree.
const MaxDepth = math.MaxInt32

// Alloc allocates elementSize*count zeroed bytes owned by n.
// Exhaustion is an invariant violation; see TryAlloc.
// A zero-sized request returns nil and registers nothing.
func (n *Node) Alloc(elementSize, count int) []byte {
	mem, err := n.TryAlloc(elementSize, count)
	if err != nil {
		Panicf("Alloc", "%v", err)
	}
	return mem
}

// TryAlloc is Alloc returning ErrOutOfMemory instead of panicking.
func (n *Node) TryAlloc(elementSize, count int) ([]byte, error) {
	n.Check("Alloc", KindNode)
	size, err := buf.ByteSize(elementSize, count)
	if err != nil {
		return nil, fmt.Errorf("alloc %d x %d: %w", elementSize, count, ErrOutOfMemory)
	}
	if size == 0 {
		return nil, nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state != Live {
		Panicf("Alloc", "node is %s", n.state)
	}
	mem := n.alloc.Realloc(nil, elementSize, count)
	if mem == nil {
		return nil, fmt.Errorf("alloc %d bytes from %s: %w", size, n.alloc.Name(), ErrOutOfMemory)
	}
	clear(mem)
	n.allocs = append(n.allocs, mem)
	return mem, nil
}

// Realloc resizes mem to elementSize*count bytes. The owner of mem is found
// by searching n and its descendants. Grown bytes are zero, a zero size frees
// mem and returns nil, and a nil mem allocates on n.
// A missing owner and exhaustion are invariant violations; see TryRealloc.
func (n *Node) Realloc(mem []byte, elementSize, count int) []byte {
	out, err := n.TryRealloc(mem, elementSize, count)
	if err != nil {
		Panicf("Realloc", "%v", err)
	}
	return out
}

// TryRealloc is Realloc returning ErrOutOfMemory instead of panicking.
// On failure mem stays valid and owned. A missing owner still panics.
func (n *Node) TryRealloc(mem []byte, elementSize, count int) ([]byte, error) {
	n.Check("Realloc", KindNode)
	if mem == nil {
		return n.TryAlloc(elementSize, count)
	}
	size, err := buf.ByteSize(elementSize, count)
	if err != nil {
		return nil, fmt.Errorf("realloc %d x %d: %w", elementSize, count, ErrOutOfMemory)
	}

	addr := alloc.Addr(mem)
	owner := n.findOwner(addr, MaxDepth)
	if owner == nil {
		Panicf("Realloc", "allocation is not owned by this node or its descendants")
	}

	owner.mu.Lock()
	defer owner.mu.Unlock()
	i := owner.allocIndex(addr)
	if i < 0 {
		Panicf("Realloc", "allocation moved during realloc")
	}
	old := owner.allocs[i]

	if size == 0 {
		owner.allocs = slices.Delete(owner.allocs, i, i+1)
		owner.alloc.Realloc(old, 0, 0)
		return nil, nil
	}

	out := owner.alloc.Realloc(old, elementSize, count)
	if out == nil {
		return nil, fmt.Errorf("realloc %d bytes from %s: %w", size, owner.alloc.Name(), ErrOutOfMemory)
	}
	if len(out) > len(old) {
		clear(out[len(old):])
	}
	owner.allocs[i] = out
	return out, nil
}

// Free releases mem; see Realloc for the owner search.
func (n *Node) Free(mem []byte) {
	if mem == nil {
		return
	}
	n.Realloc(mem, 0, 0)
}

// FindOwner returns the node directly owning mem: n itself, or a descendant
// at most maxDepth levels down. It returns nil when not found.
func (n *Node) FindOwner(mem []byte, maxDepth int) *Node {
	n.Check("FindOwner", KindNode)
	addr := alloc.Addr(mem)
	if addr == nil {
		return nil
	}
	return n.findOwner(addr, max(0, maxDepth))
}

func (n *Node) findOwner(addr *byte, depth int) *Node {
	n.mu.Lock()
	if n.allocIndex(addr) >= 0 {
		n.mu.Unlock()
		return n
	}
	var children []*Node
	if depth > 0 {
		children = slices.Clone(n.children)
	}
	n.mu.Unlock()

	for _, c := range children {
		if owner := c.findOwner(addr, depth-1); owner != nil {
			return owner
		}
	}
	return nil
}

// allocIndex finds addr in the allocation list. Caller holds n.mu.
func (n *Node) allocIndex(addr *byte) int {
	if addr == nil {
		return -1
	}
	for i, mem := range n.allocs {
		if alloc.Addr(mem) == addr {
			return i
		}
	}
	return -1
}

// Allocations returns a snapshot of the directly owned allocations.
func (n *Node) Allocations() [][]byte {
	n.Check("Allocations", KindNode)
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.allocs)
}

// NumAllocations returns the number of directly owned allocations.
func (n *Node) NumAllocations() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.allocs)
}

// Owns reports whether n directly owns mem.
func (n *Node) Owns(mem []byte) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.allocIndex(alloc.Addr(mem)) >= 0
}
