package transfer

import (
	"context"
	"sync"
	"time"
)

// Queue is a bounded in-process queue of item identifiers with duplicate
// suppression: an item already waiting or being processed is not admitted
// again until Done releases it.
type Queue struct {
	ch chan int64

	mu      sync.Mutex
	pending map[int64]struct{}
}

// NewQueue builds a queue holding at most capacity items.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		ch:      make(chan int64, capacity),
		pending: make(map[int64]struct{}, capacity),
	}
}

// TryEnqueue admits the item without blocking. It reports false when the item
// is already tracked or the queue is full.
func (q *Queue) TryEnqueue(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[id]; ok {
		return false
	}
	select {
	case q.ch <- id:
		q.pending[id] = struct{}{}
		return true
	default:
		return false
	}
}

// Dequeue waits up to timeout for the next item. The second result is false
// when the wait timed out.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (int64, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case id := <-q.ch:
		return id, true, nil
	case <-timer.C:
		return 0, false, nil
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}
}

// Done releases the item so it can be enqueued again.
func (q *Queue) Done(id int64) {
	q.forget(id)
}

// Len returns the number of items waiting or in flight.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) forget(id int64) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
