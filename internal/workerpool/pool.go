// Package workerpool provides a fixed-size pool of goroutines consuming jobs
// from a bounded queue.
//
// The engine uses two pools: a long-lived dispatcher that runs whole batches,
// and a short-lived pool per batch that bounds how many records of that batch
// are in flight at once.
//
// POOL BEHAVIOR:
//   - Submit never blocks; a full queue returns ErrQueueFull
//   - A panicking job is recovered and reported; the worker keeps running
//   - StopWait drains every queued job before returning
//   - Stop lets running jobs finish and discards the rest of the queue
package workerpool

import (
	"errors"
	"runtime/debug"
	"sync"

	"github.com/concave-dev/orderpace/internal/logging"
)

var (
	// ErrQueueFull is returned by Submit when the queue has no free slot.
	ErrQueueFull = errors.New("worker pool queue is full")

	// ErrPoolStopped is returned by Submit after Stop or StopWait.
	ErrPoolStopped = errors.New("worker pool is stopped")
)

// PanicHandler is called with the recovered value when a job panics.
type PanicHandler func(recovered any)

// Pool runs submitted jobs on a fixed number of goroutines.
type Pool struct {
	name      string
	workers   int
	queue     chan func()
	quit      chan struct{}
	onPanic   PanicHandler
	waitGroup sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// Option configures a Pool.
type Option func(*Pool)

// WithName sets the name used in log lines.
func WithName(name string) Option {
	return func(p *Pool) { p.name = name }
}

// WithPanicHandler sets a callback invoked after a job panic is recovered.
func WithPanicHandler(h PanicHandler) Option {
	return func(p *Pool) { p.onPanic = h }
}

// New starts a pool with the given number of workers and queue capacity.
// Non-positive values are raised to 1.
func New(workers, queueSize int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	p := &Pool{
		name:    "workerpool",
		workers: workers,
		queue:   make(chan func(), queueSize),
		quit:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	for i := 0; i < workers; i++ {
		p.waitGroup.Add(1)
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.quit:
			return
		case job, ok := <-p.queue:
			if !ok {
				return
			}
			p.run(job)
		}
	}
}

func (p *Pool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("%s: recovered job panic: %v\n%s", p.name, r, debug.Stack())
			if p.onPanic != nil {
				p.onPanic(r)
			}
		}
	}()
	job()
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job func()) error {
	if job == nil {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// StopWait stops accepting jobs and waits for every queued job to finish.
func (p *Pool) StopWait() {
	if !p.markStopped() {
		return
	}
	close(p.queue)
	p.waitGroup.Wait()
}

// Stop stops accepting jobs, discards queued jobs and waits for running jobs.
func (p *Pool) Stop() {
	if !p.markStopped() {
		return
	}

drain:
	for {
		select {
		case <-p.queue:
		default:
			break drain
		}
	}

	close(p.quit)
	p.waitGroup.Wait()
}

// IsRunning reports whether the pool still accepts jobs.
func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.stopped
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// QueueLen returns the number of jobs waiting to run.
func (p *Pool) QueueLen() int {
	return len(p.queue)
}

func (p *Pool) markStopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	p.stopped = true
	return true
}
