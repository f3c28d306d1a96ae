package lockfree

import (
	"iter"
	"sync/atomic"
)

// YiQueue is a lock-free Yielding Queue.
//
// It layers a size counter and a wakeup channel over Queue so that a
// consumer can sleep instead of polling: whenever a push makes the
// queue non-empty, the consumer is notified through a channel in a
// non-blocking way. Very little spin-locking is used; the only spin
// is the short window where a producer has counted an element but not
// yet linked it.
type YiQueue[T any] struct {
	Notify chan struct{}
	queue  *Queue[T]
	size   atomic.Int32
}

func NewYiQueue[T any]() *YiQueue[T] {
	return &YiQueue[T]{
		Notify: make(chan struct{}, 1),
		queue:  NewQueue[T](),
	}
}

func (yq *YiQueue[T]) Push(v T) {
	sizenow := yq.size.Add(1)
	yq.queue.Push(v)
	if sizenow == 1 && yq.size.Load() > 0 {
		// this is the first element in the queue
		// notify the consumer in a non-blocking way
		select {
		case yq.Notify <- struct{}{}:
		default:
		}
	}
}

func (yq *YiQueue[T]) Pop() (val T, ok bool) {
	for yq.size.Load() > 0 {
		val, ok = yq.queue.Pop()
		if !ok {
			// we have been promised a value, but it is still being
			// inserted in the Push() call, or a competing consumer
			// took it and has not decremented the size yet.
			continue
		}
		yq.size.Add(-1)
		return val, true
	}

	// queue is empty
	return val, false
}

func (yq *YiQueue[T]) Iter() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			val, ok := yq.Pop()
			if !ok || !yield(val) {
				return
			}
		}
	}
}
