package meshing

import (
	"sync"
	"sync/atomic"

	"github.com/alitto/pond/v2"
)

// WorkerPool runs generation and meshing tasks on a bounded pond pool.
// At most maxPending tasks may be queued or running at once; TrySubmit
// refuses work beyond that so a tick never builds an unbounded backlog.
type WorkerPool struct {
	pool       pond.Pool
	maxPending int64
	pending    atomic.Int64

	mu      sync.RWMutex
	stopped bool
}

// NewWorkerPool creates a pool with the given number of workers.
func NewWorkerPool(workers, maxPending int) *WorkerPool {
	return &WorkerPool{
		pool:       pond.NewPool(max(workers, 1)),
		maxPending: int64(max(maxPending, 1)),
	}
}

// TrySubmit queues task unless the pending budget is exhausted or the pool
// is shut down. Returns true if the task was accepted.
func (p *WorkerPool) TrySubmit(task func()) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}
	if p.pending.Add(1) > p.maxPending {
		p.pending.Add(-1)
		return false
	}
	p.pool.Submit(func() {
		defer p.pending.Add(-1)
		task()
	})
	return true
}

// Pending returns the number of tasks queued or running.
func (p *WorkerPool) Pending() int {
	return int(p.pending.Load())
}

// Running returns the number of busy workers.
func (p *WorkerPool) Running() int {
	return int(p.pool.RunningWorkers())
}

// Shutdown stops accepting tasks and waits for the queued ones to finish.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()
	p.pool.StopAndWait()
}
