package frontier

import (
	"errors"
	"sync"
	"time"
)

// WorkItem is a (canonical URL, depth) pair pending a fetch.
type WorkItem struct {
	URL   string
	Depth int
}

// ErrDequeueTimeout is returned by Dequeue when no item became available
// before the given timeout elapsed, so a worker can check for drain.
var ErrDequeueTimeout = errors.New("frontier: dequeue timed out")

// ErrQueueClosed is returned by Enqueue once Close has been called, and
// by Dequeue once the queue is closed and empty.
var ErrQueueClosed = errors.New("frontier: queue is closed")

// Queue is an unbounded, multi-producer multi-consumer FIFO of WorkItems.
// Delivered-but-unacknowledged items are tracked so Join can block until
// every dequeued item has been acknowledged via TaskDone, mirroring a
// classic producer/consumer "join the queue" primitive.
type Queue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []WorkItem
	inFlight int
	closed   bool
}

// NewQueue constructs an empty Queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends item to the tail of the queue. The Frontier type is
// responsible for gating this with the atomic visited-set check
// (mark-at-enqueue); Queue itself has no opinion on deduplication.
func (q *Queue) Enqueue(item WorkItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, item)
	q.cond.Signal()
	return nil
}

// Dequeue removes and returns the head of the queue, blocking up to
// timeout for an item to arrive. A successful dequeue increments the
// in-flight counter; the caller MUST call TaskDone exactly once per
// successful Dequeue, in every code path (success, failure, or
// cancellation), or Join will hang.
func (q *Queue) Dequeue(timeout time.Duration) (WorkItem, error) {
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		if q.closed {
			return WorkItem{}, ErrQueueClosed
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return WorkItem{}, ErrDequeueTimeout
		}
		if !q.waitWithTimeout(remaining) {
			return WorkItem{}, ErrDequeueTimeout
		}
	}

	item := q.items[0]
	q.items = q.items[1:]
	q.inFlight++
	return item, nil
}

// waitWithTimeout blocks on q.cond for at most d, returning false if it
// timed out without being signaled. Caller must hold q.mu.
func (q *Queue) waitWithTimeout(d time.Duration) bool {
	timer := time.AfterFunc(d, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	deadline := time.Now().Add(d)
	for {
		q.cond.Wait()
		if len(q.items) > 0 || q.closed {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
	}
}

// TaskDone acknowledges completion of one previously-dequeued item.
// Acknowledging more items than were dequeued is a caller bug and panics,
// mirroring Python's queue.Queue semantics that this spec generalizes.
func (q *Queue) TaskDone() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inFlight == 0 {
		panic("frontier: TaskDone called more times than items were dequeued")
	}
	q.inFlight--
	if q.inFlight == 0 && len(q.items) == 0 {
		q.cond.Broadcast()
	}
}

// Join blocks until every delivered item has been acknowledged via
// TaskDone and the queue is empty.
func (q *Queue) Join() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) > 0 || q.inFlight > 0 {
		q.cond.Wait()
	}
}

// Size returns the number of items currently queued (not counting
// in-flight items already dequeued).
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// InFlight returns the number of dequeued-but-unacknowledged items.
func (q *Queue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}

// PendingItems returns a snapshot copy of every item still sitting in
// the queue, in FIFO order, not counting items already dequeued. Used by
// checkpointing; a dequeued-but-unacknowledged (in-flight) item is, by
// definition, no longer in q.items and so is not included.
func (q *Queue) PendingItems() []WorkItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]WorkItem, len(q.items))
	copy(out, q.items)
	return out
}

// Close marks the queue closed: further Enqueue calls return
// ErrQueueClosed, Dequeue keeps handing out items already queued and
// returns ErrQueueClosed once none are left, and any blocked Dequeue
// wakes immediately.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
