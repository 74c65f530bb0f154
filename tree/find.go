package tree

import "slices"

// FindChildParent returns the node whose child list holds child: n itself or
// a descendant at most maxDepth levels down. It returns nil when not found.
func (n *Node) FindChildParent(child *Node, maxDepth int) *Node {
	n.Check("FindChildParent", KindNode)
	return n.findChildParent(child, max(0, maxDepth))
}

func (n *Node) findChildParent(child *Node, depth int) *Node {
	n.mu.Lock()
	children := slices.Clone(n.children)
	n.mu.Unlock()

	for _, c := range children {
		if c == child {
			return n
		}
	}
	if depth <= 0 {
		return nil
	}
	for _, c := range children {
		if found := c.findChildParent(child, depth-1); found != nil {
			return found
		}
	}
	return nil
}

// Find returns n if it matches kind and name, otherwise the first match among
// its children, then their subtrees up to maxDepth levels. An empty name
// matches any name.
func (n *Node) Find(kind, name string, maxDepth int) *Node {
	if n == nil {
		return nil
	}
	n.Check("Find", KindNode)
	if n.matches(kind, name) {
		return n
	}
	return n.findChild(kind, name, max(0, maxDepth))
}

func (n *Node) findChild(kind, name string, depth int) *Node {
	children := n.Children()
	for _, c := range children {
		if c.matches(kind, name) {
			return c
		}
	}
	if depth <= 0 {
		return nil
	}
	for _, c := range children {
		if found := c.findChild(kind, name, depth-1); found != nil {
			return found
		}
	}
	return nil
}

// FindParent returns the closest ancestor matching kind and name, checking
// at most maxDepth+1 ancestors. An empty name matches any name.
func (n *Node) FindParent(kind, name string, maxDepth int) *Node {
	if n == nil {
		return nil
	}
	n.Check("FindParent", KindNode)
	depth := max(0, maxDepth)
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.matches(kind, name) {
			return p
		}
		if depth <= 0 {
			return nil
		}
		depth--
	}
	return nil
}

// ListKind returns the direct children of kind.
func (n *Node) ListKind(kind string) []*Node {
	var list []*Node
	for _, c := range n.Children() {
		if c.Is(kind) {
			list = append(list, c)
		}
	}
	return list
}

// Walk visits n and its subtree in pre-order. Returning false from fn skips
// the children of the visited node.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.Check("Walk", KindNode)
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	n.mu.Lock()
	children := slices.Clone(n.children)
	n.mu.Unlock()
	for _, c := range children {
		c.walk(fn, depth+1)
	}
}

func (n *Node) matches(kind, name string) bool {
	return n.Is(kind) && (name == "" || n.Name() == name)
}
