// Package queue implements the bounded connection queue of spec.md §4.1: a
// fixed-capacity ring buffer of ConnectRequest, guarded by a mutex around
// head/tail/count and two counting semaphores implementing the classic
// bounded producer/consumer discipline. The semaphores are
// golang.org/x/sync/semaphore.Weighted instances used as simple counting
// semaphores (weight 1 per operation), the same package the teacher's
// cmd/gameserver pulls in (alongside errgroup) from golang.org/x/sync.
package queue

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// ConnectRequest is one pending client registration: the two stream paths
// it supplied in its CONNECT frame (spec.md §3).
type ConnectRequest struct {
	ReqPath   string
	NotifPath string
}

// ConnectionQueue is a single-producer/multi-consumer... in practice
// multi-producer/multi-consumer-safe FIFO of ConnectRequest, bounded at
// capacity. The mutex is never held across a semaphore wait (spec.md §4.1
// discipline).
type ConnectionQueue struct {
	mu       sync.Mutex
	ring     []ConnectRequest
	head     int
	tail     int
	count    int
	capacity int

	semEmpty *semaphore.Weighted // permits = free slots
	semFull  *semaphore.Weighted // permits = queued requests
}

// New creates a queue with the given capacity (spec.md: MAX_PENDING_CLIENTS
// by default).
func New(capacity int) *ConnectionQueue {
	if capacity <= 0 {
		panic("queue: capacity must be positive")
	}
	q := &ConnectionQueue{
		ring:     make([]ConnectRequest, capacity),
		capacity: capacity,
		// A fresh Weighted semaphore starts with its full size available,
		// which is exactly "capacity free slots" for semEmpty. semFull
		// must start at zero available permits (no queued requests yet),
		// so its full weight is immediately and non-blockingly acquired
		// below and never given back except one unit per Enqueue.
		semEmpty: semaphore.NewWeighted(int64(capacity)),
		semFull:  semaphore.NewWeighted(int64(capacity)),
	}
	if !q.semFull.TryAcquire(int64(capacity)) {
		panic("queue: initializing semFull: unreachable, fresh semaphore always has full weight available")
	}
	return q
}

// Enqueue blocks until a free slot exists, stores req, and wakes one
// consumer. Safe for concurrent use by many producers.
func (q *ConnectionQueue) Enqueue(ctx context.Context, req ConnectRequest) error {
	if err := q.semEmpty.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("enqueue: waiting for free slot: %w", err)
	}

	q.mu.Lock()
	q.ring[q.tail] = req
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.mu.Unlock()

	q.semFull.Release(1)
	return nil
}

// Dequeue blocks until a request is available, removes the oldest (FIFO),
// and wakes one producer. Safe for concurrent use by many consumers.
func (q *ConnectionQueue) Dequeue(ctx context.Context) (ConnectRequest, error) {
	if err := q.semFull.Acquire(ctx, 1); err != nil {
		return ConnectRequest{}, fmt.Errorf("dequeue: waiting for request: %w", err)
	}

	q.mu.Lock()
	req := q.ring[q.head]
	q.ring[q.head] = ConnectRequest{}
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.mu.Unlock()

	q.semEmpty.Release(1)
	return req, nil
}

// Len returns the current queue depth. Intended for diagnostics/tests
// only; under concurrent use the value may be stale the instant it is
// read.
func (q *ConnectionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Capacity returns the fixed capacity the queue was created with
// (MAX_PENDING_CLIENTS unless configured otherwise).
func (q *ConnectionQueue) Capacity() int {
	return q.capacity
}
