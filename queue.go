// Lock-free data structures
package lockfree

import (
	"sync/atomic"
)

// Queue is an unbounded lock-free FIFO queue for any number of
// concurrent producers and consumers, after Michael & Scott (1996).
//
// The list always starts with a sentinel node holding no value; the
// first real element is the sentinel's successor. Removed nodes are
// reclaimed by the garbage collector once no goroutine still holds a
// snapshot of them, and node memory is never pooled or reused, so a
// stale pointer can never be revalidated by a recycled address (the
// ABA problem cannot arise).
type Queue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
}

type node[T any] struct {
	val  T
	next atomic.Pointer[node[T]]
}

// NewQueue creates an empty queue with head and tail at a shared
// sentinel node.
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	sentinel := &node[T]{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Push appends v at the tail of the queue. It never blocks and never
// fails; contention with other producers only causes a retry.
func (q *Queue[T]) Push(v T) {
	n := &node[T]{val: v}
	var tail *node[T]
	for {
		tail = q.tail.Load()
		next := tail.next.Load()
		if next != nil {
			// A producer linked a node but has not swung the tail
			// yet. Help it along and start over.
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		if tail.next.CompareAndSwap(nil, n) {
			break
		}
	}
	// Single best-effort swing; a failure means someone already
	// helped the tail past this node.
	q.tail.CompareAndSwap(tail, n)
}

// Pop removes and returns the value at the head of the queue.
// ok is false when the queue is observed empty. Pop never blocks;
// an empty queue is a normal outcome, not an error.
func (q *Queue[T]) Pop() (val T, ok bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		first := head.next.Load()
		if head == tail {
			if first == nil {
				// Observed empty.
				return val, false
			}
			// Tail lags behind a linked node; help and retry.
			q.tail.CompareAndSwap(tail, first)
			continue
		}
		if first == nil {
			// head != tail guarantees a successor; reaching this
			// means the list structure is corrupt.
			panic("lockfree: queue head/tail invariant violated")
		}
		if q.head.CompareAndSwap(head, first) {
			// Winning the swap makes first the new sentinel and this
			// goroutine the sole reader of its value slot. The slot
			// is cleared so the queue does not keep the element alive
			// past extraction; the old sentinel is left to the
			// garbage collector.
			val = first.val
			var zero T
			first.val = zero
			return val, true
		}
	}
}
