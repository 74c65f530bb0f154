package tree

// WeakJoin references a Join without keeping it alive. Acquire makes the
// weak join a parent of the join for as long as it is held, so a join
// returned by Acquire stays live until Release, or until the join is
// released outright with Join.Release.
type WeakJoin struct {
	*Node
	join *Join
}

// NewWeakJoin creates a weak reference to j owned by parent.
func NewWeakJoin(parent *Node, j *Join) *WeakJoin {
	j.Check("NewWeakJoin", KindJoin)
	n := New(parent)
	n.SetKind(KindWeakJoin)
	w := &WeakJoin{Node: n, join: j}
	n.Bind(w)
	n.OnDestroy(w.teardown)
	if !j.addWeak(w) {
		w.Lock()
		w.join = nil
		w.Unlock()
	}
	return w
}

// Available reports whether the join has not been destroyed yet.
func (w *WeakJoin) Available() bool {
	w.Check("WeakJoin.Available", KindWeakJoin)
	w.Lock()
	defer w.Unlock()
	return w.join != nil
}

// Acquire registers w as a parent of the join and returns it, or nil once
// the join is gone or going. Acquiring twice holds the join once.
func (w *WeakJoin) Acquire() *Join {
	w.Check("WeakJoin.Acquire", KindWeakJoin)
	w.Lock()
	j := w.join
	w.Unlock()
	if j == nil {
		return nil
	}
	if _, live := j.add(w.Node); !live {
		return nil
	}
	return j
}

// Release drops the hold taken by Acquire, destroying the join if w was its
// last parent. It returns false if w did not hold the join.
func (w *WeakJoin) Release() bool {
	w.Check("WeakJoin.Release", KindWeakJoin)
	w.Lock()
	j := w.join
	w.Unlock()
	if j == nil {
		return false
	}
	return j.remove(w.Node, true)
}

// joinDestroyed clears the reference; called by the join's teardown.
func (w *WeakJoin) joinDestroyed(j *Join) {
	w.Lock()
	if w.join == j {
		w.join = nil
	}
	w.Unlock()
}

func (w *WeakJoin) teardown(n *Node) {
	w.Lock()
	j := w.join
	w.join = nil
	w.Unlock()
	if j != nil {
		j.dropWeak(w)
	}
	// A held join is released by the callback child going with n.
	Teardown(n)
}
