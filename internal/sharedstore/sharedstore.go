// Package sharedstore implements the shared-store adapter: a
// uniform facade over a key-value broker offering the four primitives
// distributed mode needs (queue enqueue/dequeue, set add-if-absent,
// result-list append/read, worker identity register/unregister). The
// rest of the core is agnostic to which Adapter implementation is
// plugged in; local mode uses package frontier/result directly instead.
package sharedstore

import (
	"context"
	"time"
)

// Adapter is the four-operation facade.
type Adapter interface {
	// Enqueue pushes raw (already-serialized) work item bytes onto the
	// named queue.
	Enqueue(ctx context.Context, queueName string, item []byte) error
	// Dequeue pops the head of the named queue, blocking up to timeout.
	// ok is false on timeout, not on error.
	Dequeue(ctx context.Context, queueName string, timeout time.Duration) (item []byte, ok bool, err error)
	// AddIfAbsent atomically adds member to the named set, reporting
	// whether this call performed the insertion.
	AddIfAbsent(ctx context.Context, setName string, member string) (added bool, err error)
	// Members returns every member of the named set, for distributed-mode
	// checkpointing: the shared VisitedSet's Contains/Size/All all derive
	// from this.
	Members(ctx context.Context, setName string) ([]string, error)
	// AppendResult durably appends raw (already-serialized) result bytes
	// to the named result list.
	AppendResult(ctx context.Context, listName string, record []byte) error
	// ReadResults returns every entry appended to the named result list.
	ReadResults(ctx context.Context, listName string) ([][]byte, error)
	// RegisterWorker announces a worker identity as live.
	RegisterWorker(ctx context.Context, workerID string) error
	// UnregisterWorker retracts a worker identity, e.g. on clean shutdown.
	UnregisterWorker(ctx context.Context, workerID string) error
}
