package router

import "sync"

// Queue is an unbounded FIFO safe for one or more producers and consumers.
// Its backing array doubles when full.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   []T
	head   int
	n      int
	closed bool

	pushed int64
	popped int64
	grows  int
	peak   int
}

// QueueStats is a point-in-time view of a queue.
type QueueStats struct {
	Len    int
	Cap    int
	Peak   int
	Pushed int64
	Popped int64
	Grows  int
}

// NewQueue creates a queue with room for size items before it first grows.
func NewQueue[T any](size int) *Queue[T] {
	if size < 1 {
		size = 1
	}
	q := &Queue[T]{ring: make([]T, size)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an item. It reports false once the queue is closed.
func (q *Queue[T]) Push(item T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if q.n == len(q.ring) {
		q.resize(len(q.ring) * 2)
	}
	q.ring[(q.head+q.n)%len(q.ring)] = item
	q.n++
	q.pushed++
	if q.n > q.peak {
		q.peak = q.n
	}
	q.cond.Signal()
	return true
}

// Pop blocks until an item is available. It reports false once the queue is
// closed and empty.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.n == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.n == 0 {
		var zero T
		return zero, false
	}
	return q.take(1)[0], true
}

// TryPop returns the next item without blocking.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.n == 0 {
		var zero T
		return zero, false
	}
	return q.take(1)[0], true
}

// PopBatch blocks until at least one item is available, then returns up to
// max items (all of them if max <= 0). It reports false once the queue is
// closed and empty.
func (q *Queue[T]) PopBatch(max int) ([]T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.n == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.n == 0 {
		return nil, false
	}
	k := q.n
	if max > 0 && max < k {
		k = max
	}
	return q.take(k), true
}

// Close stops further pushes and wakes blocked consumers. Items already
// queued can still be popped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Stats returns queue counters.
func (q *Queue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:    q.n,
		Cap:    len(q.ring),
		Peak:   q.peak,
		Pushed: q.pushed,
		Popped: q.popped,
		Grows:  q.grows,
	}
}

// take removes k items from the head. Must be called with lock held.
func (q *Queue[T]) take(k int) []T {
	out := make([]T, k)
	var zero T
	for i := range k {
		idx := (q.head + i) % len(q.ring)
		out[i] = q.ring[idx]
		q.ring[idx] = zero
	}
	q.head = (q.head + k) % len(q.ring)
	q.n -= k
	q.popped += int64(k)
	return out
}

// resize moves the queued items to a new array of size. Must be called with
// lock held.
func (q *Queue[T]) resize(size int) {
	ring := make([]T, size)
	for i := range q.n {
		ring[i] = q.ring[(q.head+i)%len(q.ring)]
	}
	q.ring = ring
	q.head = 0
	q.grows++
}
