package midi

import "sync"

// UpdateQueue is a mutex-guarded FIFO of control updates with a non-empty
// signal. Insertion order is delivery priority order.
//
// The queue is unbounded: producers must never block beyond the lock, and
// the delivery worker drains the whole backlog on every pass, so depth stays
// small in practice. Depth is exported via Len for observability.
//
// The signal channel carries one token per empty→non-empty transition (a
// buffered channel of capacity one, the Go rendition of a condition variable
// signalled on push). The worker's timed wait on it exists only so
// cancellation is observed while idle — correctness depends on the signal,
// not the timeout.
//
// Thread Safety: all methods are safe for concurrent use.
type UpdateQueue struct {
	mu      sync.Mutex
	updates []ControlUpdate
	signal  chan struct{}
}

// NewUpdateQueue returns an empty queue ready for use.
func NewUpdateQueue() *UpdateQueue {
	return &UpdateQueue{
		signal: make(chan struct{}, 1),
	}
}

// Push appends an update to the tail and wakes the consumer. It always
// succeeds and never blocks beyond the lock.
func (q *UpdateQueue) Push(u ControlUpdate) {
	q.mu.Lock()
	q.updates = append(q.updates, u)
	q.mu.Unlock()

	// Non-blocking: one pending token is enough, the worker drains everything.
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// DrainAll atomically removes and returns every queued update in FIFO order.
// Returns nil if the queue is empty. The backing slice is handed to the
// caller and replaced, so the lock is held only for the swap — never during
// delivery.
func (q *UpdateQueue) DrainAll() []ControlUpdate {
	q.mu.Lock()
	batch := q.updates
	q.updates = nil
	q.mu.Unlock()
	return batch
}

// Len returns the current queue depth.
func (q *UpdateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.updates)
}

// Signal returns the channel the worker waits on. It receives one token per
// empty→non-empty transition; spurious wakes are harmless (the worker checks
// emptiness after draining).
func (q *UpdateQueue) Signal() <-chan struct{} {
	return q.signal
}
