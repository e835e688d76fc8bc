// Package pipeline runs the capture-to-delivery processing loop. Clips are
// queued as capture finishes and processed one at a time so transcripts are
// always delivered in recording order.
package pipeline

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO. Dequeue blocks until an item arrives, the
// queue is closed and drained, or the context ends.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	notify chan struct{}
}

func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// Enqueue appends an item. Enqueue after Close is a no-op.
func (q *Queue[T]) Enqueue(item T) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue pops the oldest item. The second return is false once the queue
// is closed and empty, or the context is done.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, bool) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return zero, false
		}

		select {
		case <-ctx.Done():
			return zero, false
		case <-q.notify:
		}
	}
}

// Len reports how many items are waiting.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue finished. Queued items remain dequeueable so a
// shutdown can flush in-flight work.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}
