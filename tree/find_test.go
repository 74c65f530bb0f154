package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildFindTree builds
//
//	root
//	├── a (NodeA, "first")
//	│   └── a1 (NodeB, "deep")
//	└── b (NodeB, "second")
func buildFindTree(t *testing.T) (root, a, a1, b *Node) {
	root, _ = newCountingRoot(t)
	a = New(root)
	a.SetKind("NodeA")
	a.SetName("first")
	a1 = New(a)
	a1.SetKind("NodeB")
	a1.SetName("deep")
	b = New(root)
	b.SetKind("NodeB")
	b.SetName("second")
	return root, a, a1, b
}

func TestFindChildParent(t *testing.T) {
	root, a, a1, b := buildFindTree(t)

	assert.Same(t, root, root.FindChildParent(b, 0))
	assert.Nil(t, root.FindChildParent(a1, 0))
	assert.Same(t, a, root.FindChildParent(a1, 1))
	assert.Nil(t, root.FindChildParent(root, MaxDepth))
}

func TestFind(t *testing.T) {
	root, a, a1, b := buildFindTree(t)

	assert.Same(t, root, root.Find(KindNode, "", 0), "self matches first")
	assert.Same(t, a, root.Find("NodeA", "", 0))
	assert.Same(t, b, root.Find("NodeB", "", 0), "direct children before grandchildren")
	assert.Nil(t, root.Find("NodeB", "deep", 0))
	assert.Same(t, a1, root.Find("NodeB", "deep", 1))
	assert.Nil(t, root.Find("NodeC", "", MaxDepth))

	var nilNode *Node
	assert.Nil(t, nilNode.Find(KindNode, "", 0))
}

func TestFindParent(t *testing.T) {
	root, a, a1, _ := buildFindTree(t)
	root.SetName("root")

	assert.Same(t, a, a1.FindParent("NodeA", "", 0))
	assert.Same(t, a, a1.FindParent(KindNode, "", 0))
	assert.Nil(t, a1.FindParent(KindNode, "root", 0))
	assert.Same(t, root, a1.FindParent(KindNode, "root", 1))
	assert.Nil(t, root.FindParent(KindNode, "", MaxDepth))
}

func TestListKind(t *testing.T) {
	root, a, _, b := buildFindTree(t)

	assertNodes(t, []*Node{b}, root.ListKind("NodeB"))
	assertNodes(t, []*Node{a, b}, root.ListKind(KindNode))
	assert.Empty(t, root.ListKind("NodeC"))
}

func TestWalk(t *testing.T) {
	root, a, a1, b := buildFindTree(t)

	var visited []*Node
	var depths []int
	root.Walk(func(n *Node, depth int) bool {
		visited = append(visited, n)
		depths = append(depths, depth)
		return true
	})
	assertNodes(t, []*Node{root, a, a1, b}, visited)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)

	visited = nil
	root.Walk(func(n *Node, _ int) bool {
		visited = append(visited, n)
		return n != a
	})
	assertNodes(t, []*Node{root, a, b}, visited)
}
