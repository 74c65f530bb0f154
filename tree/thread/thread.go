package thread

import (
	"github.com/joshuapare/ownkit/internal/logger"
	"github.com/joshuapare/ownkit/tree"
)

// KindThread is the node kind of threads.
const KindThread = "NodeThread"

// ThreadState is the lifecycle stage of a thread.
type ThreadState int32

const (
	ThreadInit ThreadState = iota
	ThreadRunning
	ThreadFinished
)

func (s ThreadState) String() string {
	switch s {
	case ThreadInit:
		return "init"
	case ThreadRunning:
		return "running"
	case ThreadFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Thread is a goroutine owned by a node. Destroying the node waits for the
// goroutine to return, so fn must not destroy its own thread.
type Thread struct {
	*tree.Node
	fn    func(th *Thread)
	state ThreadState
	done  chan struct{}
}

// NewThread creates a thread that runs fn once Run is called.
func NewThread(parent *tree.Node, name string, fn func(th *Thread)) *Thread {
	if fn == nil {
		tree.Panicf("thread.NewThread", "nil function")
	}
	n := tree.New(parent)
	n.SetKind(KindThread)
	n.SetName(name)
	th := &Thread{Node: n, fn: fn, done: make(chan struct{})}
	n.Bind(th)
	n.OnDestroy(th.teardown)
	return th
}

// Go creates a thread and starts it.
func Go(parent *tree.Node, name string, fn func(th *Thread)) *Thread {
	th := NewThread(parent, name, fn)
	th.Run()
	return th
}

// Run starts the goroutine. A thread runs at most once.
func (th *Thread) Run() {
	th.Check("thread.Thread.Run", KindThread)
	th.Lock()
	if th.state != ThreadInit {
		th.Unlock()
		tree.Panicf("thread.Thread.Run", "thread %q is %s", th.Name(), th.state)
	}
	th.state = ThreadRunning
	th.Unlock()

	name := th.Name()
	logger.Debug("thread started", "name", name)
	go func() {
		defer func() {
			th.Lock()
			th.state = ThreadFinished
			th.Unlock()
			close(th.done)
			logger.Debug("thread finished", "name", name)
		}()
		th.fn(th)
	}()
}

// Wait blocks until the goroutine returns. Waiting on a thread that was
// never started is fatal.
func (th *Thread) Wait() {
	th.Check("thread.Thread.Wait", KindThread)
	if th.State() == ThreadInit {
		tree.Panicf("thread.Thread.Wait", "thread %q was never started", th.Name())
	}
	<-th.done
}

// Done is closed once the goroutine has returned.
func (th *Thread) Done() <-chan struct{} {
	return th.done
}

// State returns the thread's lifecycle stage.
func (th *Thread) State() ThreadState {
	th.Lock()
	defer th.Unlock()
	return th.state
}

func (th *Thread) teardown(n *tree.Node) {
	if th.State() != ThreadInit {
		<-th.done
	}
	tree.Teardown(n)
}
