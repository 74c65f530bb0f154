package thread

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/joshuapare/ownkit/tree"
)

// KindCondition is the node kind of conditions.
const KindCondition = "NodeCondition"

// Condition is a condition variable whose waiters hold a guard lock,
// usually the node whose state the condition describes.
type Condition struct {
	*tree.Node
	guard   sync.Locker
	waiters []chan struct{} // FIFO, guarded by the condition node
}

// NewCondition creates a condition child of parent waiting with guard.
func NewCondition(parent *tree.Node, guard sync.Locker) *Condition {
	if guard == nil {
		tree.Panicf("thread.NewCondition", "nil guard")
	}
	n := tree.New(parent)
	n.SetKind(KindCondition)
	c := &Condition{Node: n, guard: guard}
	n.Bind(c)
	n.OnDestroy(c.teardown)
	return c
}

// teardown wakes every waiter; they return as if signaled.
func (c *Condition) teardown(n *tree.Node) {
	c.Broadcast()
	tree.Teardown(n)
}

func (c *Condition) enqueue() chan struct{} {
	ch := make(chan struct{})
	c.Lock()
	c.waiters = append(c.waiters, ch)
	c.Unlock()
	return ch
}

// dequeue removes ch and reports whether it was still waiting.
func (c *Condition) dequeue(ch chan struct{}) bool {
	c.Lock()
	defer c.Unlock()
	i := slices.Index(c.waiters, ch)
	if i < 0 {
		return false
	}
	c.waiters = slices.Delete(c.waiters, i, i+1)
	return true
}

// Wait releases the guard, blocks until signaled and locks the guard again.
// The caller must hold the guard.
func (c *Condition) Wait() {
	c.Check("thread.Condition.Wait", KindCondition)
	ch := c.enqueue()
	c.guard.Unlock()
	<-ch
	c.guard.Lock()
}

// WaitTimeout is Wait bounded by d. It reports whether it was signaled.
func (c *Condition) WaitTimeout(d time.Duration) bool {
	c.Check("thread.Condition.WaitTimeout", KindCondition)
	ch := c.enqueue()
	c.guard.Unlock()
	defer c.guard.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return !c.dequeue(ch)
	}
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() when ctx ends
// before a signal arrives.
func (c *Condition) WaitContext(ctx context.Context) error {
	c.Check("thread.Condition.WaitContext", KindCondition)
	ch := c.enqueue()
	c.guard.Unlock()
	defer c.guard.Lock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		if c.dequeue(ch) {
			return ctx.Err()
		}
		return nil
	}
}

// Signal wakes the longest waiting waiter, if any.
func (c *Condition) Signal() {
	c.Check("thread.Condition.Signal", KindCondition)
	c.Lock()
	defer c.Unlock()
	if len(c.waiters) == 0 {
		return
	}
	close(c.waiters[0])
	c.waiters = slices.Delete(c.waiters, 0, 1)
}

// Broadcast wakes every waiter.
func (c *Condition) Broadcast() {
	c.Check("thread.Condition.Broadcast", KindCondition)
	c.Lock()
	defer c.Unlock()
	for _, ch := range c.waiters {
		close(ch)
	}
	c.waiters = nil
}

// Waiters returns the number of blocked waiters.
func (c *Condition) Waiters() int {
	c.Lock()
	defer c.Unlock()
	return len(c.waiters)
}
