package tree

import "github.com/joshuapare/ownkit/internal/logger"

// DestroyCallback is a child node that runs a function when destroyed,
// either directly or as part of its parent's teardown.
type DestroyCallback struct {
	*Node
	fn func(cb *DestroyCallback)
}

// NewDestroyCallback creates a callback child of parent.
func NewDestroyCallback(parent *Node, fn func(cb *DestroyCallback)) *DestroyCallback {
	n := New(parent)
	n.SetKind(KindDestroyCallback)
	cb := &DestroyCallback{Node: n, fn: fn}
	n.Bind(cb)
	n.OnDestroy(cb.fire)
	return cb
}

// NewDestroyLog creates a callback that logs name and msg when destroyed.
func NewDestroyLog(parent *Node, name, msg string) *DestroyCallback {
	cb := NewDestroyCallback(parent, func(cb *DestroyCallback) {
		logger.Info("node destroyed", "name", cb.Name(), "detail", msg)
	})
	cb.SetName(name)
	return cb
}

// Disarm removes the function; destroying the callback then does nothing extra.
func (cb *DestroyCallback) Disarm() {
	cb.Lock()
	cb.fn = nil
	cb.Unlock()
}

func (cb *DestroyCallback) fire(n *Node) {
	n.Lock()
	fn := cb.fn
	cb.fn = nil
	n.Unlock()
	if fn != nil {
		fn(cb)
	}
	Teardown(n)
}

// dropCallback disarms and destroys cb unless it is already going away.
func dropCallback(cb *DestroyCallback) {
	if cb == nil {
		return
	}
	cb.Disarm()
	if cb.Is(KindDestroyCallback) {
		cb.Destroy()
	}
}
