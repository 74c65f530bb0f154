package thread

import (
	"context"
	"time"

	"github.com/joshuapare/ownkit/tree"
)

// KindFuture is the node kind of futures.
const KindFuture = "NodeFuture"

// FutureState is the lifecycle stage of a future.
type FutureState int32

const (
	FutureInit FutureState = iota
	FuturePreparing
	FutureRunning
	FutureFinished
)

func (s FutureState) String() string {
	switch s {
	case FutureInit:
		return "init"
	case FuturePreparing:
		return "preparing"
	case FutureRunning:
		return "running"
	case FutureFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Future runs fn once, on a pool worker or on a thread of its own, and lets
// other goroutines wait for it to finish. Results travel through the node:
// fn allocates on f or stores them with SetUser.
//
// A future queued on a pool that is destroyed before a worker picks it up
// never runs; destroying it is safe, waiting on it blocks forever.
type Future struct {
	*tree.Node
	fn       func(f *Future)
	pool     *Pool
	state    FutureState
	id       uint64
	finished *Condition
}

// NewFuture creates a future for fn. With a nil pool, Run spawns a thread.
func NewFuture(parent *tree.Node, fn func(f *Future), pool *Pool) *Future {
	if fn == nil {
		tree.Panicf("thread.NewFuture", "nil function")
	}
	n := tree.New(parent)
	n.SetKind(KindFuture)
	f := &Future{Node: n, fn: fn, pool: pool}
	f.finished = NewCondition(n, n)
	n.Bind(f)
	n.OnDestroy(f.teardown)
	return f
}

// RunFuture creates a future, sets its user value and runs it.
func RunFuture(parent *tree.Node, fn func(f *Future), pool *Pool, user any) *Future {
	f := NewFuture(parent, fn, pool)
	if user != nil {
		f.SetUser(user)
	}
	f.Run()
	return f
}

// Run schedules the future. Only the first call has an effect.
func (f *Future) Run() {
	f.Check("thread.Future.Run", KindFuture)
	f.Lock()
	if f.state != FutureInit {
		f.Unlock()
		return
	}
	f.state = FuturePreparing
	f.Unlock()

	if f.pool != nil {
		f.pool.submit(f)
		return
	}
	Go(f.Node, "future", func(*Thread) { f.execute() })
}

// execute runs fn on the calling goroutine.
func (f *Future) execute() {
	f.Lock()
	f.state = FutureRunning
	f.Unlock()

	f.fn(f)

	f.Lock()
	f.state = FutureFinished
	f.Unlock()
	f.finished.Broadcast()
}

// Wait blocks until the future has finished. Waiting on a future that was
// never run is fatal.
func (f *Future) Wait() {
	f.Check("thread.Future.Wait", KindFuture)
	f.mustHaveRun("thread.Future.Wait")
	f.Lock()
	defer f.Unlock()
	for f.state != FutureFinished {
		f.finished.Wait()
	}
}

// WaitTimeout is Wait bounded by d. It reports whether the future finished.
func (f *Future) WaitTimeout(d time.Duration) bool {
	f.Check("thread.Future.WaitTimeout", KindFuture)
	deadline := time.Now().Add(d)
	f.mustHaveRun("thread.Future.WaitTimeout")
	f.Lock()
	defer f.Unlock()
	for f.state != FutureFinished {
		left := time.Until(deadline)
		if left <= 0 {
			return false
		}
		f.finished.WaitTimeout(left)
	}
	return true
}

// WaitContext is Wait bounded by ctx. The work keeps running when ctx ends.
func (f *Future) WaitContext(ctx context.Context) error {
	f.Check("thread.Future.WaitContext", KindFuture)
	f.mustHaveRun("thread.Future.WaitContext")
	f.Lock()
	defer f.Unlock()
	for f.state != FutureFinished {
		if err := f.finished.WaitContext(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (f *Future) mustHaveRun(op string) {
	if f.State() == FutureInit {
		tree.Panicf(op, "future was never run")
	}
}

// State returns the future's lifecycle stage.
func (f *Future) State() FutureState {
	f.Lock()
	defer f.Unlock()
	return f.state
}

// Pool returns the pool the future runs on, nil for a dedicated thread.
func (f *Future) Pool() *Pool {
	return f.pool
}

// teardown withdraws a future still waiting in a pool queue, or waits for
// one that is already running.
func (f *Future) teardown(n *tree.Node) {
	f.Lock()
	state, id := f.state, f.id
	f.Unlock()

	if state == FuturePreparing && f.pool != nil && f.pool.forget(id) {
		tree.Teardown(n)
		return
	}
	if state != FutureInit {
		f.Lock()
		for f.state != FutureFinished {
			f.finished.Wait()
		}
		f.Unlock()
	}
	tree.Teardown(n)
}
