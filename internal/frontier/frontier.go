package frontier

import "time"

// Frontier couples a Queue with a VisitedSet under the mark-at-enqueue
// invariant: a URL is recorded as visited at the instant it wins
// the right to be enqueued, not when the fetch eventually completes. This
// is what prevents two concurrent workers from both enqueueing the same
// URL after it shows up as a link on two different pages.
type Frontier struct {
	queue   *Queue
	visited VisitedSet
}

// NewFrontier constructs a local-mode Frontier backed by an in-process
// queue and visited set.
func NewFrontier() *Frontier {
	return &Frontier{
		queue:   NewQueue(),
		visited: NewMemoryVisitedSet(),
	}
}

// NewFrontierWithVisitedSet constructs a Frontier over a caller-supplied
// VisitedSet, so distributed mode can plug in package sharedstore's
// implementation while reusing the same local Queue for in-process
// handoff to this orchestrator's own worker pool.
func NewFrontierWithVisitedSet(v VisitedSet) *Frontier {
	return &Frontier{queue: NewQueue(), visited: v}
}

// TryEnqueue attempts to mark url visited and, only if this call won that
// race, enqueues it at depth. It reports whether the item was enqueued;
// false means some other caller already claimed this URL first.
func (f *Frontier) TryEnqueue(url string, depth int) (bool, error) {
	if !f.visited.AddIfAbsent(url) {
		return false, nil
	}
	if err := f.queue.Enqueue(WorkItem{URL: url, Depth: depth}); err != nil {
		return false, err
	}
	return true, nil
}

// MarkVisited records url as visited without enqueueing it, for restoring
// a checkpoint's Visited set independently of which URLs are still
// pending. Reports whether this call performed the insertion.
func (f *Frontier) MarkVisited(url string) bool {
	return f.visited.AddIfAbsent(url)
}

// Requeue enqueues item directly, bypassing the visited-set race in
// TryEnqueue. Callers MUST have already ensured item.URL is marked
// visited (e.g. via MarkVisited during checkpoint restore); this exists
// so pending work items can re-enter the queue without being treated as
// newly discovered.
func (f *Frontier) Requeue(item WorkItem) error {
	return f.queue.Enqueue(item)
}

// Dequeue removes and returns the head work item, blocking up to timeout.
func (f *Frontier) Dequeue(timeout time.Duration) (WorkItem, error) {
	return f.queue.Dequeue(timeout)
}

// TaskDone acknowledges completion of a previously dequeued item.
func (f *Frontier) TaskDone() { f.queue.TaskDone() }

// Join blocks until every enqueued item has been acknowledged.
func (f *Frontier) Join() { f.queue.Join() }

// Close closes the underlying queue to further enqueues.
func (f *Frontier) Close() { f.queue.Close() }

// Size returns the number of items currently queued, not counting
// in-flight items already dequeued.
func (f *Frontier) Size() int { return f.queue.Size() }

// InFlight returns the number of dequeued-but-unacknowledged items.
func (f *Frontier) InFlight() int { return f.queue.InFlight() }

// Visited reports whether url has already been claimed by some caller of
// TryEnqueue, without attempting to claim it.
func (f *Frontier) Visited(url string) bool { return f.visited.Contains(url) }

// VisitedCount returns the number of distinct URLs ever claimed.
func (f *Frontier) VisitedCount() int { return f.visited.Size() }

// AllVisited returns a snapshot of every URL ever claimed via
// TryEnqueue, for checkpointing.
func (f *Frontier) AllVisited() []string { return f.visited.All() }

// PendingItems returns a snapshot of every work item still queued but
// not yet dequeued, for checkpointing.
func (f *Frontier) PendingItems() []WorkItem { return f.queue.PendingItems() }
