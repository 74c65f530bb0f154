package tree

import "strings"

// Kinds defined by this package. Kinds of other packages extend KindNode.
const (
	KindNode            = "Node"
	KindDestroyCallback = "NodeDestroyCallback"
	KindPtr             = "NodePtr"
	KindJoin            = "NodeJoin"
	KindWeakJoin        = "NodeWeakJoin"
)

// Kind returns the node's kind tag, empty once destroyed.
func (n *Node) Kind() string {
	if n == nil {
		return ""
	}
	return n.kind
}

// Is reports whether the node is of kind or of a kind extending it.
func (n *Node) Is(kind string) bool {
	if n == nil || n.kind == "" {
		return false
	}
	return strings.HasPrefix(n.kind, kind)
}

// Check panics with an *InvariantError unless the node is of kind.
func (n *Node) Check(op, kind string) {
	if n == nil {
		fail(op, kind, "", "nil node")
	}
	if !n.Is(kind) {
		fail(op, kind, n.kind, "kind mismatch")
	}
}

// SetKind extends the node's kind. The new kind must start with the current one.
func (n *Node) SetKind(kind string) {
	n.Check("SetKind", KindNode)
	if !strings.HasPrefix(kind, n.kind) {
		fail("SetKind", n.kind, kind, "kind must extend the current kind")
	}
	n.kind = kind
}

// Cast returns the value bound to a node of kind.
// A kind mismatch or a bound value of another type is an invariant violation.
func Cast[T any](n *Node, kind string) T {
	n.Check("Cast", kind)
	v, ok := n.Bound().(T)
	if !ok {
		fail("Cast", kind, n.kind, "bound value has type %T", n.Bound())
	}
	return v
}
