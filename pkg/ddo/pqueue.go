package ddo

import (
	"github.com/rhartert/yagh"
)

// pqueue is a max-priority queue of subproblems on top of the yagh indexed
// heap. yagh pops the smallest cost, so priorities are stored negated. Slots
// of popped items are recycled through a free list.
type pqueue[T comparable] struct {
	heap     *yagh.IntMap[float64]
	items    []SubProblem[T]
	priority []float64
	free     []int
	size     int
}

func newPQueue[T comparable]() *pqueue[T] {
	return &pqueue[T]{heap: yagh.New[float64](0)}
}

func (q *pqueue[T]) push(sub SubProblem[T], priority float64) {
	var slot int
	if n := len(q.free); n > 0 {
		slot = q.free[n-1]
		q.free = q.free[:n-1]
		q.items[slot] = sub
		q.priority[slot] = priority
	} else {
		slot = len(q.items)
		q.items = append(q.items, sub)
		q.priority = append(q.priority, priority)
		q.heap.GrowBy(1)
	}
	q.heap.Put(slot, -priority)
	q.size++
}

func (q *pqueue[T]) pop() (SubProblem[T], float64, bool) {
	entry, ok := q.heap.Pop()
	if !ok {
		return SubProblem[T]{}, 0, false
	}
	slot := entry.Elem
	sub, priority := q.items[slot], q.priority[slot]
	q.items[slot] = SubProblem[T]{}
	q.free = append(q.free, slot)
	q.size--
	return sub, priority, true
}

// peek returns the best priority without removing its item.
func (q *pqueue[T]) peek() (float64, bool) {
	entry, ok := q.heap.Pop()
	if !ok {
		return 0, false
	}
	q.heap.Put(entry.Elem, -q.priority[entry.Elem])
	return q.priority[entry.Elem], true
}

func (q *pqueue[T]) len() int { return q.size }

func (q *pqueue[T]) clear() {
	q.heap = yagh.New[float64](0)
	q.items = nil
	q.priority = nil
	q.free = nil
	q.size = 0
}
