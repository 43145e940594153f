// Package parallel holds the concurrency plumbing of the parallel
// branch-and-bound driver: a bounded goroutine pool and the barrier that
// detects when every worker ran out of work.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ErrPoolShutdown is returned when trying to submit tasks to a shutdown pool.
var ErrPoolShutdown = errors.New("worker pool has been shutdown")

// WorkerPool runs submitted tasks on a fixed number of goroutines.
type WorkerPool struct {
	maxWorkers   int
	tasks        chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// NewWorkerPool starts maxWorkers goroutines.
// If maxWorkers is 0 or negative, it defaults to the number of CPU cores.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers:   maxWorkers,
		tasks:        make(chan func(), maxWorkers),
		shutdownChan: make(chan struct{}),
	}
	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}
	return pool
}

// Size returns the number of goroutines of the pool.
func (wp *WorkerPool) Size() int { return wp.maxWorkers }

func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()
	for {
		select {
		case task := <-wp.tasks:
			if task != nil {
				task()
			}
		case <-wp.shutdownChan:
			return
		}
	}
}

// Submit hands task to the pool. It blocks while every worker is busy and
// the queue is full.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case wp.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Shutdown stops the workers once their current task returns. Tasks still
// queued are discarded.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		wp.workerWg.Wait()
	})
}
