package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a persistent set of goroutines that executes row bands.
//
// Every worker has its own queue and steals from the others when its queue
// is empty, which balances bands whose rows cost different amounts.
// A pool can serve as the Executor of many passes, avoiding goroutine start
// cost on small images.
//
// Tasks must not submit work to the pool they run on: a task waiting on its
// own pool can deadlock once every worker is blocked.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool

	// mu keeps Close from closing done while ExecuteAll is queueing.
	mu sync.RWMutex
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	logger.Load().Debug("parallel: worker pool started", "workers", workers)
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case work := <-own:
			work()
			continue
		default:
		}

		if stolen := p.steal(id); stolen != nil {
			stolen()
			continue
		}

		select {
		case <-p.done:
			p.drain(own)
			return
		case work := <-own:
			work()
		}
	}
}

// drain runs whatever is left in queue after Close.
func (p *WorkerPool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// Run implements Executor.
func (p *WorkerPool) Run(n int, task func(i int) error) error {
	if n <= 0 {
		return nil
	}
	work := make([]func() error, n)
	for i := range work {
		work[i] = func() error { return task(i) }
	}
	return p.ExecuteAll(work)
}

// ExecuteAll distributes work across the workers round-robin and waits for
// all of it to complete. It returns the first error reported by a work item,
// or ErrPoolClosed without running anything if the pool is closed.
// Panics are recovered and returned as *PanicError.
func (p *WorkerPool) ExecuteAll(work []func() error) error {
	if len(work) == 0 {
		return nil
	}
	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		return ErrPoolClosed
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) { once.Do(func() { firstErr = err }) }

	wg.Add(len(work))
	for i, fn := range work {
		wrapped := func() {
			defer wg.Done()
			if err := runTask(func(int) error { return fn() }, i); err != nil {
				fail(err)
			}
		}
		p.workQueues[i%p.workers] <- wrapped
	}
	p.mu.RUnlock()
	wg.Wait()
	return firstErr
}

// Close stops the pool after the queued work has run. Close is safe to call
// multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork returns the approximate number of queued items.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.workQueues {
		total += len(q)
	}
	return total
}
