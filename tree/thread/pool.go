package thread

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/ownkit/internal/logger"
	"github.com/joshuapare/ownkit/tree"
)

// KindPool is the node kind of thread pools.
const KindPool = "NodePool"

const idSize = 8

// Pool runs futures on a fixed set of workers. Queued futures are referenced
// by id; a future destroyed before a worker reaches it is skipped.
type Pool struct {
	*tree.Node
	queue   *Queue
	group   errgroup.Group
	workers int
	futures map[uint64]*Future
	nextID  uint64
	running int
	stopped bool
}

// NewPool starts workers goroutines pulling futures in submission order.
func NewPool(parent *tree.Node, workers int) *Pool {
	if workers <= 0 {
		tree.Panicf("thread.NewPool", "%d workers", workers)
	}
	n := tree.New(parent)
	n.SetKind(KindPool)
	p := &Pool{
		Node:    n,
		workers: workers,
		futures: make(map[uint64]*Future),
	}
	p.queue = NewQueue(n, idSize, 0)
	n.Bind(p)
	n.OnDestroy(p.teardown)

	for i := range workers {
		p.group.Go(func() error {
			p.work(i)
			return nil
		})
	}
	return p
}

func (p *Pool) work(worker int) {
	logger.Debug("pool worker started", "worker", worker)
	defer logger.Debug("pool worker stopped", "worker", worker)

	var buf [idSize]byte
	for p.queue.TakeFront(buf[:], 1) {
		id := binary.LittleEndian.Uint64(buf[:])

		p.Lock()
		f, ok := p.futures[id]
		delete(p.futures, id)
		if ok {
			p.running++
		}
		p.Unlock()
		if !ok {
			continue
		}

		f.execute()

		p.Lock()
		p.running--
		p.Unlock()
	}
}

// submit registers f and queues its id.
func (p *Pool) submit(f *Future) {
	p.Check("thread.Pool.submit", KindPool)
	p.Lock()
	if p.stopped {
		p.Unlock()
		tree.Panicf("thread.Pool.submit", "pool is shut down")
	}
	p.nextID++
	id := p.nextID
	p.futures[id] = f
	p.Unlock()

	f.Lock()
	f.id = id
	f.Unlock()

	var buf [idSize]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	if !p.queue.Push(buf[:]) {
		tree.Panicf("thread.Pool.submit", "pool queue is closed")
	}
}

// forget withdraws a queued future and reports whether it will not run.
// It returns false when a worker has already taken it.
func (p *Pool) forget(id uint64) bool {
	p.Lock()
	defer p.Unlock()
	if p.stopped {
		return true
	}
	if _, ok := p.futures[id]; ok {
		delete(p.futures, id)
		return true
	}
	return false
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Running returns the number of futures executing right now.
func (p *Pool) Running() int {
	p.Check("thread.Pool.Running", KindPool)
	p.Lock()
	defer p.Unlock()
	return p.running
}

// Queuing returns the number of futures waiting for a worker.
func (p *Pool) Queuing() int {
	p.Check("thread.Pool.Queuing", KindPool)
	p.Lock()
	defer p.Unlock()
	return len(p.futures)
}

// Describe summarizes the pool for tree dumps.
func (p *Pool) Describe() string {
	p.Lock()
	defer p.Unlock()
	return fmt.Sprintf("pool: %d workers, %d running, %d queued", p.workers, p.running, len(p.futures))
}

// teardown stops accepting work, lets the workers drain what is queued
// and joins them.
func (p *Pool) teardown(n *tree.Node) {
	p.queue.Close()
	_ = p.group.Wait()

	p.Lock()
	p.stopped = true
	orphaned := len(p.futures)
	clear(p.futures)
	p.Unlock()
	if orphaned > 0 {
		logger.Warn("pool destroyed with queued futures", "futures", orphaned)
	}
	tree.Teardown(n)
}
