package tree

// Ptr is a weak reference to a node. It reads nil once the target is destroyed.
// The reference is tracked by a DestroyCallback installed on the target.
type Ptr struct {
	*Node
	target *Node
	cb     *DestroyCallback
}

// NewPtr creates a weak pointer owned by parent, referencing target (may be nil).
func NewPtr(parent, target *Node) *Ptr {
	n := New(parent)
	n.SetKind(KindPtr)
	p := &Ptr{Node: n}
	n.Bind(p)
	n.OnDestroy(p.teardown)
	p.Set(target)
	return p
}

// Get returns the target, nil if unset or destroyed.
func (p *Ptr) Get() *Node {
	p.Check("Ptr.Get", KindPtr)
	p.Lock()
	defer p.Unlock()
	return p.target
}

// Set points the reference at target, releasing the previous one.
func (p *Ptr) Set(target *Node) {
	p.Check("Ptr.Set", KindPtr)

	p.Lock()
	old := p.cb
	p.cb = nil
	p.target = nil
	p.Unlock()
	dropCallback(old)

	if target == nil {
		return
	}

	var cb *DestroyCallback
	cb = NewDestroyCallback(target, func(*DestroyCallback) {
		p.Lock()
		if p.cb == cb {
			p.target = nil
			p.cb = nil
		}
		p.Unlock()
	})
	cb.SetName("ptr")

	p.Lock()
	p.target = target
	p.cb = cb
	p.Unlock()
}

func (p *Ptr) teardown(n *Node) {
	p.Lock()
	cb := p.cb
	p.cb = nil
	p.target = nil
	p.Unlock()
	dropCallback(cb)
	Teardown(n)
}
