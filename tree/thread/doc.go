// Package thread provides blocking primitives that live in an ownership tree:
// condition variables, blocking queues, threads, futures and a worker pool.
//
// Every primitive is a node and locks with node mutexes. A Condition waits
// with a guard node locked, the same way a sync.Cond waits with its Locker.
// Destroying a Thread, a running Future or a Pool blocks until the work it
// owns has finished. Work is never cancelled once started; timeouts and
// contexts only bound how long the caller waits.
//
//	root := tree.NewRoot(alloc.Heap{})
//	pool := thread.NewPool(root, 4)
//	f := thread.RunFuture(root, func(f *thread.Future) {
//	    // work
//	}, pool)
//	f.Wait()
//	root.Destroy() // closes the pool queue and joins the workers
package thread
