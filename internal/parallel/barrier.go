package parallel

import (
	"sync"
)

// Barrier detects the termination of a set of workers that both consume and
// produce work items. A worker Acquires an item, processes it (possibly
// producing new items), then Releases. The barrier is done once nothing can
// be taken and no worker holds an item, or when Stop is called.
type Barrier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	active int
	done   bool
}

func NewBarrier() *Barrier {
	b := &Barrier{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Acquire calls take under the barrier lock until it succeeds. It blocks
// while take fails and some other worker is still active, and returns false
// once the barrier is done.
func (b *Barrier) Acquire(take func() bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		if b.done {
			return false
		}
		if take() {
			b.active++
			return true
		}
		if b.active == 0 {
			b.done = true
			b.cond.Broadcast()
			return false
		}
		b.cond.Wait()
	}
}

// Release ends the processing of an acquired item and wakes up waiters.
func (b *Barrier) Release() {
	b.mu.Lock()
	b.active--
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Stop marks the barrier done. Blocked and future Acquire calls return false.
func (b *Barrier) Stop() {
	b.mu.Lock()
	b.done = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Active returns the number of workers holding an item.
func (b *Barrier) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}
