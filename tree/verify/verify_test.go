package verify

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/alloc"
	"github.com/joshuapare/ownkit/tree/array"
	"github.com/joshuapare/ownkit/tree/hashmap"
)

func TestAllInvariants_Valid(t *testing.T) {
	c := alloc.NewCounting(alloc.Heap{})
	root := tree.NewRoot(c)
	defer root.Destroy()

	a := tree.New(root)
	a.SetName("a")
	a.Alloc(1, 10)
	b := tree.New(a)
	b.Alloc(8, 2)
	arr := array.NewDyn(root, nil, 4, 0, 4)
	arr.Append(make([]byte, 20), 5)
	m := hashmap.NewStrings(root, 4, 8)
	m.SetString("k", []byte{1, 2, 3, 4})

	require.NoError(t, AllInvariants(root))
	require.NoError(t, Accounting(root, c))
}

func TestStructure_DestroyedRoot(t *testing.T) {
	root := tree.NewRoot(alloc.Heap{})
	root.Destroy()

	err := Structure(root)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Structure", verr.Type)
	require.Contains(t, err.Error(), "node is destroyed")

	require.Error(t, Structure(nil))
}

func TestAccounting_Mismatch(t *testing.T) {
	c := alloc.NewCounting(alloc.Heap{})
	root := tree.NewRoot(c)
	defer root.Destroy()
	other := tree.NewRoot(c)
	defer other.Destroy()

	root.Alloc(1, 8)
	require.NoError(t, Accounting(root, c))

	other.Alloc(1, 4)
	err := Accounting(root, c)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Accounting", verr.Type)
	require.Equal(t, 2, verr.Details["alloc_blocks"])
	require.Equal(t, 1, verr.Details["tree_blocks"])
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{Type: "Structure", Message: "bad", Path: "/0:a"}
	require.Equal(t, "Structure at /0:a: bad", e.Error())
	e.Path = ""
	require.Equal(t, "Structure: bad", e.Error())
}

func TestLabel(t *testing.T) {
	root := tree.NewRoot(alloc.Heap{})
	defer root.Destroy()
	named := tree.New(root)
	named.SetName("cfg")
	require.Equal(t, "3:cfg", label(3, named))
	require.Equal(t, "0:Node", label(0, tree.New(root)))
}

// TestRandomOps keeps every invariant across random tree mutations.
func TestRandomOps(t *testing.T) {
	c := alloc.NewCounting(alloc.Heap{})
	root := tree.NewRoot(c)
	rng := rand.New(rand.NewPCG(7, 11))

	nodes := []*tree.Node{root}
	var mems [][]byte
	live := func() []*tree.Node {
		out := nodes[:0]
		for _, n := range nodes {
			if n.State() == tree.Live {
				out = append(out, n)
			}
		}
		nodes = out
		return out
	}
	liveMems := func() [][]byte {
		out := mems[:0]
		for _, m := range mems {
			if root.FindOwner(m, tree.MaxDepth) != nil {
				out = append(out, m)
			}
		}
		mems = out
		return out
	}
	pick := func(ns []*tree.Node) *tree.Node { return ns[rng.IntN(len(ns))] }

	for step := range 2000 {
		ns := live()
		switch op := rng.IntN(6); op {
		case 0:
			nodes = append(nodes, tree.New(pick(ns)))
		case 1:
			mems = append(mems, pick(ns).Alloc(1, 1+rng.IntN(64)))
		case 2:
			if ms := liveMems(); len(ms) > 0 {
				i := rng.IntN(len(ms))
				mems[i] = root.Realloc(ms[i], 1, 1+rng.IntN(128))
			}
		case 3:
			if ms := liveMems(); len(ms) > 0 {
				m := ms[rng.IntN(len(ms))]
				tree.MoveAllocation(m, root, pick(ns))
			}
		case 4:
			if len(ns) > 1 {
				n, into := ns[1+rng.IntN(len(ns)-1)], pick(ns)
				if !isAncestor(n, into) {
					tree.Move(n, into)
				}
			}
		case 5:
			if len(ns) > 1 && rng.IntN(3) == 0 {
				ns[1+rng.IntN(len(ns)-1)].Destroy()
			}
		}
		require.NoError(t, AllInvariants(root), "step %d", step)
		require.NoError(t, Accounting(root, c), "step %d", step)
	}

	root.Destroy()
	blocks, bytes := c.Live()
	require.Zero(t, blocks)
	require.Zero(t, bytes)
}

// isAncestor reports whether n is into or one of its ancestors.
func isAncestor(n, into *tree.Node) bool {
	for p := into; p != nil; p = p.Parent() {
		if p == n {
			return true
		}
	}
	return false
}
