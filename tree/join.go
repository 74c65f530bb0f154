package tree

import (
	"slices"

	"github.com/joshuapare/ownkit/tree/alloc"
)

// Join is a root shared by several parents. It is destroyed when its last
// parent is removed or destroyed. Each parent carries a DestroyCallback
// child that removes it from the join. WeakJoins referencing the join are
// cleared when it goes.
type Join struct {
	*Node
	parents []joinParent
	weaks   []*WeakJoin
	dying   bool // no parent can be added any more
}

type joinParent struct {
	node *Node
	cb   *DestroyCallback
}

// NewJoin creates a join bound to a with at least one parent.
func NewJoin(a alloc.Allocator, parents ...*Node) *Join {
	if len(parents) == 0 {
		Panicf("NewJoin", "a join needs at least one parent")
	}
	n := NewRoot(a)
	n.SetKind(KindJoin)
	j := &Join{Node: n}
	n.Bind(j)
	n.OnDestroy(j.teardown)
	for _, p := range parents {
		j.Add(p)
	}
	return j
}

// Add registers parent. It returns false if parent already holds the join
// or the join is being destroyed.
func (j *Join) Add(parent *Node) bool {
	j.Check("Join.Add", KindJoin)
	parent.Check("Join.Add", KindNode)
	added, _ := j.add(parent)
	return added
}

// add registers parent unless the join is going away. live reports whether
// parent holds the join once add returns.
func (j *Join) add(parent *Node) (added, live bool) {
	j.Lock()
	live = !j.dying
	known := j.index(parent) >= 0
	j.Unlock()
	if !live || known {
		return false, live
	}

	cb := NewDestroyCallback(parent, func(*DestroyCallback) {
		j.remove(parent, false)
	})
	cb.SetName("join")

	j.Lock()
	switch {
	case j.dying:
		live = false
	case j.index(parent) >= 0:
	default:
		j.parents = append(j.parents, joinParent{node: parent, cb: cb})
		added = true
	}
	j.Unlock()
	if !added {
		dropCallback(cb)
	}
	return added, live
}

// Remove unregisters parent and destroys the join if it was the last one.
// It returns false if parent did not hold the join.
func (j *Join) Remove(parent *Node) bool {
	j.Check("Join.Remove", KindJoin)
	return j.remove(parent, true)
}

func (j *Join) remove(parent *Node, dropCb bool) bool {
	j.Lock()
	i := j.index(parent)
	if i < 0 {
		j.Unlock()
		return false
	}
	entry := j.parents[i]
	j.parents = slices.Delete(j.parents, i, i+1)
	empty := len(j.parents) == 0
	if empty {
		j.dying = true
	}
	j.Unlock()

	if dropCb {
		dropCallback(entry.cb)
	}
	if empty {
		j.Destroy()
	}
	return true
}

// IsParent reports whether parent holds the join.
func (j *Join) IsParent(parent *Node) bool {
	j.Lock()
	defer j.Unlock()
	return j.index(parent) >= 0
}

// NumParents returns the number of parents holding the join.
func (j *Join) NumParents() int {
	j.Lock()
	defer j.Unlock()
	return len(j.parents)
}

// Release destroys the join regardless of its parents.
func (j *Join) Release() {
	j.Destroy()
}

// index finds parent. Caller holds the join lock.
func (j *Join) index(parent *Node) int {
	return slices.IndexFunc(j.parents, func(p joinParent) bool {
		return p.node == parent
	})
}

// addWeak registers w to be cleared when the join goes. It reports false
// if the join is already going.
func (j *Join) addWeak(w *WeakJoin) bool {
	j.Lock()
	defer j.Unlock()
	if j.dying {
		return false
	}
	j.weaks = append(j.weaks, w)
	return true
}

func (j *Join) dropWeak(w *WeakJoin) {
	j.Lock()
	defer j.Unlock()
	if i := slices.Index(j.weaks, w); i >= 0 {
		j.weaks = slices.Delete(j.weaks, i, i+1)
	}
}

func (j *Join) teardown(n *Node) {
	j.Lock()
	j.dying = true
	parents := j.parents
	j.parents = nil
	weaks := j.weaks
	j.weaks = nil
	j.Unlock()
	for _, w := range weaks {
		w.joinDestroyed(j)
	}
	for _, p := range parents {
		dropCallback(p.cb)
	}
	Teardown(n)
}
