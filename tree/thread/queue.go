package thread

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joshuapare/ownkit/tree"
	"github.com/joshuapare/ownkit/tree/array"
)

// KindQueue is the node kind of queues.
const KindQueue = "NodeQueue"

// ErrClosed is returned by context-bound takes on a closed, drained queue.
var ErrClosed = errors.New("thread: queue closed")

// Queue is a blocking queue of fixed-size elements. Storage is an array
// child of the queue node; the queue node lock guards it.
//
// Append and Push add at the back, AppendFront at the front. Take removes
// from the back and TakeFront from the front, so Push with TakeFront is FIFO.
type Queue struct {
	*tree.Node
	data     *array.Array
	notEmpty *Condition
	notFull  *Condition
	limit    int
	closed   bool
	gone     bool
}

// NewQueue creates a queue of elementSize-byte elements. A positive limit
// bounds the number of queued elements; appends block while it is reached.
func NewQueue(parent *tree.Node, elementSize, limit int) *Queue {
	if elementSize <= 0 || limit < 0 {
		tree.Panicf("thread.NewQueue", "element size %d, limit %d", elementSize, limit)
	}
	n := tree.New(parent)
	n.SetKind(KindQueue)
	q := &Queue{Node: n, limit: limit}
	q.data = array.New(n, nil, elementSize, 0, array.DefaultStartCapacity, array.GrowDoubledCenter)
	q.data.SetName("queue.data")
	q.notEmpty = NewCondition(n, n)
	q.notFull = NewCondition(n, n)
	n.Bind(q)
	n.OnDestroy(q.teardown)
	return q
}

// Append adds count elements at the back. It blocks while the queue is
// full and returns false, adding nothing, once the queue is closed.
func (q *Queue) Append(data []byte, count int) bool {
	return q.add("thread.Queue.Append", data, count, false)
}

// AppendFront adds count elements at the front.
func (q *Queue) AppendFront(data []byte, count int) bool {
	return q.add("thread.Queue.AppendFront", data, count, true)
}

// Push appends one element.
func (q *Queue) Push(elem []byte) bool {
	return q.add("thread.Queue.Push", elem, 1, false)
}

func (q *Queue) add(op string, data []byte, count int, front bool) bool {
	q.Check(op, KindQueue)
	if count <= 0 {
		return true
	}
	if data != nil && len(data) < count*q.data.ElementSize() {
		tree.Panicf(op, "%d bytes for %d elements of %d", len(data), count, q.data.ElementSize())
	}
	if q.limit > 0 && count > q.limit {
		tree.Panicf(op, "appending %d elements to a queue limited to %d", count, q.limit)
	}

	q.Lock()
	for !q.closed && q.limit > 0 && q.data.Len()+count > q.limit {
		q.notFull.Wait()
	}
	if q.closed {
		q.Unlock()
		return false
	}
	if front {
		q.data.AppendFront(data, count)
	} else {
		q.data.Append(data, count)
	}
	q.Unlock()
	q.notEmpty.Broadcast()
	return true
}

// Take blocks until count elements are queued and moves the last count into
// out (nil discards them). It returns false once the queue is closed and
// holds fewer than count elements.
func (q *Queue) Take(out []byte, count int) bool {
	return q.take("thread.Queue.Take", out, count, false, q.waitForever)
}

// TakeTry is Take without blocking.
func (q *Queue) TakeTry(out []byte, count int) bool {
	return q.take("thread.Queue.TakeTry", out, count, false, nil)
}

// TakeFront is Take from the front.
func (q *Queue) TakeFront(out []byte, count int) bool {
	return q.take("thread.Queue.TakeFront", out, count, true, q.waitForever)
}

// TakeFrontTry is TakeFront without blocking.
func (q *Queue) TakeFrontTry(out []byte, count int) bool {
	return q.take("thread.Queue.TakeFrontTry", out, count, true, nil)
}

// TakeTimeout is TakeFront bounded by d.
func (q *Queue) TakeTimeout(out []byte, count int, d time.Duration) bool {
	deadline := time.Now().Add(d)
	return q.take("thread.Queue.TakeTimeout", out, count, true, func() bool {
		left := time.Until(deadline)
		if left <= 0 {
			return false
		}
		q.notEmpty.WaitTimeout(left)
		return true
	})
}

// TakeContext is TakeFront bounded by ctx. It returns ctx.Err() when ctx
// ends first and ErrClosed when the queue is closed and short.
func (q *Queue) TakeContext(ctx context.Context, out []byte, count int) error {
	var err error
	ok := q.take("thread.Queue.TakeContext", out, count, true, func() bool {
		err = q.notEmpty.WaitContext(ctx)
		return err == nil
	})
	switch {
	case ok:
		return nil
	case err != nil:
		return err
	default:
		return ErrClosed
	}
}

func (q *Queue) waitForever() bool {
	q.notEmpty.Wait()
	return true
}

// take removes count elements once available. wait is called with the
// queue locked and reports whether to keep waiting; nil never waits.
func (q *Queue) take(op string, out []byte, count int, front bool, wait func() bool) bool {
	q.Check(op, KindQueue)
	if count <= 0 {
		return true
	}
	if out != nil && len(out) < count*q.data.ElementSize() {
		tree.Panicf(op, "%d bytes for %d elements of %d", len(out), count, q.data.ElementSize())
	}
	if q.limit > 0 && count > q.limit {
		tree.Panicf(op, "taking %d elements from a queue limited to %d", count, q.limit)
	}

	q.Lock()
	for !q.closed && q.data.Len() < count {
		if wait == nil || !wait() {
			break
		}
	}
	if q.gone || q.data.Len() < count {
		q.Unlock()
		return false
	}
	if front {
		q.data.TakeFront(out, count)
	} else {
		q.data.Take(out, count)
	}
	q.Unlock()
	q.notFull.Broadcast()
	return true
}

// Close wakes every waiter. Appends fail from now on; queued elements can
// still be taken.
func (q *Queue) Close() {
	q.Check("thread.Queue.Close", KindQueue)
	q.Lock()
	q.closed = true
	q.Unlock()
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Closed reports whether Close was called.
func (q *Queue) Closed() bool {
	q.Lock()
	defer q.Unlock()
	return q.closed
}

// Len returns the number of queued elements.
func (q *Queue) Len() int {
	q.Check("thread.Queue.Len", KindQueue)
	q.Lock()
	defer q.Unlock()
	return q.data.Len()
}

// ElementSize returns the element size in bytes.
func (q *Queue) ElementSize() int {
	return q.data.ElementSize()
}

// Describe summarizes the queue for tree dumps.
func (q *Queue) Describe() string {
	q.Lock()
	defer q.Unlock()
	d := fmt.Sprintf("queue: %d queued, element %d bytes", q.data.Len(), q.data.ElementSize())
	if q.limit > 0 {
		d += fmt.Sprintf(", limit %d", q.limit)
	}
	if q.closed {
		d += ", closed"
	}
	return d
}

// Limit returns the element limit, 0 when unbounded.
func (q *Queue) Limit() int {
	return q.limit
}

func (q *Queue) teardown(n *tree.Node) {
	q.Lock()
	q.closed = true
	q.gone = true
	q.Unlock()
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
	tree.Teardown(n)
}
