package tree

import (
	"slices"
	"sync"

	"github.com/joshuapare/ownkit/tree/alloc"
)

// State is the lifecycle stage of a node.
type State int32

const (
	Live State = iota
	Destroying
	Destroyed
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Destroying:
		return "destroying"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// DestroyFunc tears a node down. Implementations must end in Teardown.
type DestroyFunc func(n *Node)

// Node is one vertex of an ownership tree.
type Node struct {
	mu       sync.Mutex
	kind     string
	name     string
	user     any
	bound    any
	alloc    alloc.Allocator
	parent   *Node
	children []*Node
	allocs   [][]byte
	destroy  DestroyFunc
	state    State
}

var _ sync.Locker = (*Node)(nil)

// NewRoot creates a parentless node bound to a.
func NewRoot(a alloc.Allocator) *Node {
	if a == nil {
		fail("NewRoot", "", "", "nil allocator")
	}
	return &Node{
		kind:    KindNode,
		alloc:   a,
		destroy: Teardown,
	}
}

// New creates a child of parent bound to the parent's allocator.
func New(parent *Node) *Node {
	parent.Check("New", KindNode)

	parent.mu.Lock()
	defer parent.mu.Unlock()
	if parent.state != Live {
		fail("New", KindNode, parent.kind, "parent is %s", parent.state)
	}
	n := &Node{
		kind:    KindNode,
		alloc:   parent.alloc,
		parent:  parent,
		destroy: Teardown,
	}
	parent.children = append(parent.children, n)
	return n
}

// Lock locks the node's mutex. The mutex is not recursive.
func (n *Node) Lock() { n.mu.Lock() }

// Unlock unlocks the node's mutex.
func (n *Node) Unlock() { n.mu.Unlock() }

// TryLock tries to lock the node's mutex without blocking.
func (n *Node) TryLock() bool { return n.mu.TryLock() }

// Allocator returns the allocator the node's tree is bound to.
func (n *Node) Allocator() alloc.Allocator {
	n.Check("Allocator", KindNode)
	return n.alloc
}

// Name returns the optional display name.
func (n *Node) Name() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.name
}

// SetName sets the display name.
func (n *Node) SetName(name string) {
	n.Check("SetName", KindNode)
	n.mu.Lock()
	n.name = name
	n.mu.Unlock()
}

// User returns the user value.
func (n *Node) User() any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.user
}

// SetUser attaches an arbitrary value to the node.
func (n *Node) SetUser(v any) {
	n.Check("SetUser", KindNode)
	n.mu.Lock()
	n.user = v
	n.mu.Unlock()
}

// Bound returns the implementation value bound with Bind.
func (n *Node) Bound() any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bound
}

// Bind records the value implementing the node's kind, see Cast.
func (n *Node) Bind(v any) {
	n.Check("Bind", KindNode)
	n.mu.Lock()
	n.bound = v
	n.mu.Unlock()
}

// State returns the lifecycle stage.
func (n *Node) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Parent returns the owning node, nil for roots.
func (n *Node) Parent() *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

// Root walks up to the parentless ancestor.
func (n *Node) Root() *Node {
	n.Check("Root", KindNode)
	r := n
	for p := r.Parent(); p != nil; p = r.Parent() {
		r = p
	}
	return r
}

// Children returns a snapshot of the child list.
func (n *Node) Children() []*Node {
	n.Check("Children", KindNode)
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.children)
}

// NumChildren returns the number of direct children.
func (n *Node) NumChildren() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.children)
}

// OnDestroy installs fn as the destroy function and returns the previous one.
func (n *Node) OnDestroy(fn DestroyFunc) DestroyFunc {
	n.Check("OnDestroy", KindNode)
	if fn == nil {
		fn = Teardown
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	prev := n.destroy
	n.destroy = fn
	return prev
}

// Destroy detaches the node from its parent and runs its destroy function.
func (n *Node) Destroy() {
	n.Check("Destroy", KindNode)

	n.mu.Lock()
	if n.state != Live {
		n.mu.Unlock()
		return
	}
	parent := n.parent
	n.parent = nil
	destroy := n.destroy
	n.mu.Unlock()

	if parent != nil {
		parent.mu.Lock()
		parent.removeChild(n)
		parent.mu.Unlock()
	}
	destroy(n)
}

// Teardown is the default destroy function: children first, in order, then
// the node's own allocations, then the node itself.
func Teardown(n *Node) {
	n.mu.Lock()
	if n.state != Live {
		n.mu.Unlock()
		return
	}
	n.state = Destroying
	children := n.children
	n.children = nil
	n.mu.Unlock()

	for _, c := range children {
		c.mu.Lock()
		if c.state != Live {
			c.mu.Unlock()
			continue
		}
		c.parent = nil
		destroy := c.destroy
		c.mu.Unlock()
		destroy(c)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, mem := range n.allocs {
		n.alloc.Realloc(mem, 0, 0)
	}
	n.allocs = nil
	n.children = nil
	n.kind = ""
	n.name = ""
	n.user = nil
	n.bound = nil
	n.destroy = nil
	n.state = Destroyed
}

// removeChild drops c from the child list. Caller holds n.mu.
func (n *Node) removeChild(c *Node) bool {
	i := slices.Index(n.children, c)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	return true
}
