// Package orchestrator implements the top-level crawl driver: the
// component that owns the crawl's lifecycle — seed admission, worker
// pool spawning, termination, checkpointing, and graceful cancellation.
// It replaces a single unbounded goroutine-per-link fan-out with a
// fixed worker pool pulling from a shared Frontier, using the same
// logger-per-component and signal-driven shutdown style as the rest
// of the engine.
package orchestrator

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/duskcrawl/webcrawler/internal/checkpoint"
	"github.com/duskcrawl/webcrawler/internal/frontier"
	"github.com/duskcrawl/webcrawler/internal/result"
	"github.com/duskcrawl/webcrawler/internal/scope"
	"github.com/duskcrawl/webcrawler/internal/urlcanon"
	"github.com/duskcrawl/webcrawler/internal/worker"
)

// ErrScopeTooStrict is returned by Run when not a single seed survives
// scope filtering.
var ErrScopeTooStrict = errors.New("orchestrator: no seed passed scope filtering")

// Stats are the crawl's diagnostic counters: counts only, no export
// pipeline.
type Stats struct {
	OutOfScopeCount int64
	InvalidURLCount int64
	DuplicateCount  int64
	PagesFetched    int64
	PagesFailed     int64
}

// Config configures a single crawl run.
type Config struct {
	MaxDepth       int
	NumWorkers     int
	PageCap        int // 0 means unbounded
	CheckpointPath string
	CheckpointEvery time.Duration
}

// Orchestrator owns one crawl's lifecycle.
type Orchestrator struct {
	cfg               Config
	frontier          *frontier.Frontier
	scope             *scope.Set
	pool              *worker.Pool
	store             *result.Store
	logger            *log.Logger
	stats             statsCounters
	stopCh            chan struct{}
	stopOnce          int32
	configFingerprint string
}

type statsCounters struct {
	outOfScope int64
	invalidURL int64
	duplicate  int64
}

// New constructs an Orchestrator from its already-built dependencies
// (Scope Engine, Frontier, Worker Pool, Result Store), per the
// explicit dependency construction: no post-construction
// attribute injection. configFingerprint is stamped into every
// checkpoint this Orchestrator writes, so a subsequent resume can detect
// it was asked to continue under materially different settings.
func New(cfg Config, f *frontier.Frontier, scopeSet *scope.Set, pool *worker.Pool, store *result.Store, logger *log.Logger, configFingerprint string) *Orchestrator {
	if logger == nil {
		logger = log.New(io.Discard, "orchestrator: ", log.LstdFlags)
	}
	return &Orchestrator{
		cfg:               cfg,
		frontier:          f,
		scope:             scopeSet,
		pool:              pool,
		store:             store,
		logger:            logger,
		stopCh:            make(chan struct{}),
		configFingerprint: configFingerprint,
	}
}

// Run normalizes and scope-filters seeds, enqueues the survivors, spawns
// the worker pool, and blocks until a termination condition is reached.
func (o *Orchestrator) Run(ctx context.Context, seeds []string) ([]result.PageRecord, error) {
	admitted := 0
	for _, raw := range seeds {
		canon, err := urlcanon.Normalize(raw)
		if err != nil {
			atomic.AddInt64(&o.stats.invalidURL, 1)
			continue
		}
		if o.scope.Decide(urlcanon.Hostname(canon)) != scope.In {
			atomic.AddInt64(&o.stats.outOfScope, 1)
			continue
		}
		ok, err := o.frontier.TryEnqueue(canon, 0)
		if err != nil {
			return nil, err
		}
		if !ok {
			atomic.AddInt64(&o.stats.duplicate, 1)
			continue
		}
		admitted++
	}
	if admitted == 0 && len(seeds) > 0 && o.frontier.Size() == 0 {
		return nil, ErrScopeTooStrict
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go o.watchTermination(runCtx, cancel)
	if o.cfg.CheckpointPath != "" && o.cfg.CheckpointEvery > 0 {
		go o.periodicCheckpoint(runCtx)
	}

	o.pool.Run(runCtx)
	o.logger.Println("crawl finished")

	return o.store.All(), nil
}

// watchTermination polls for the drain condition (queue empty, nothing
// in flight), the configured page cap, or an explicit stop request. On
// drain or stop it cancels runCtx. On the page cap it calls
// pool.StopAdmitting, after which each worker exits once its current
// item is done, so Run returns with any remaining items left queued.
func (o *Orchestrator) watchTermination(runCtx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-runCtx.Done():
			return
		case <-o.stopCh:
			cancel()
			return
		case <-ticker.C:
			if o.cfg.PageCap > 0 && o.store.Len() >= o.cfg.PageCap {
				o.pool.StopAdmitting()
			}
			if o.frontier.Size() == 0 && o.frontier.InFlight() == 0 {
				cancel()
				return
			}
		}
	}
}

// periodicCheckpoint persists a Crawl State snapshot at cfg.CheckpointEvery
// intervals, for later resume via package checkpoint.
func (o *Orchestrator) periodicCheckpoint(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.CheckpointEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := checkpoint.Save(o.cfg.CheckpointPath, o.Snapshot()); err != nil {
				o.logger.Printf("checkpoint save failed: %v", err)
			}
		}
	}
}

// RequestStop asks the orchestrator to stop: outstanding fetches are
// canceled, workers acknowledge their current item, and Run returns once
// they exit.
func (o *Orchestrator) RequestStop() {
	if atomic.CompareAndSwapInt32(&o.stopOnce, 0, 1) {
		close(o.stopCh)
	}
}

// Snapshot captures the current Crawl State: the full Visited set, every
// work item still sitting in the queue, the scope rules in force, and
// the config fingerprint this Orchestrator was built with. A
// dequeued-but-unacknowledged (in-flight) item is, by definition, no
// longer in the queue and so is not captured; losing the small number of
// items a handful of workers are mid-fetch on is an acceptable gap for a
// checkpoint taken at an arbitrary instant.
func (o *Orchestrator) Snapshot() checkpoint.CrawlState {
	return checkpoint.Snapshot(
		o.frontier,
		o.frontier.AllVisited(),
		o.frontier.PendingItems(),
		o.store,
		checkpoint.ScopeRulesSnapshot{
			Includes: o.scope.Includes(),
			Excludes: o.scope.Excludes(),
		},
		o.configFingerprint,
	)
}

// Stats returns a copy of the diagnostic counters accumulated so far.
// PagesFetched and PagesFailed are derived from the stored records
// rather than tracked separately, so they can never drift from
// o.store's actual contents.
func (o *Orchestrator) Stats() Stats {
	var fetched, failed int64
	for _, r := range o.store.All() {
		if r.Success {
			fetched++
		} else {
			failed++
		}
	}
	return Stats{
		OutOfScopeCount: atomic.LoadInt64(&o.stats.outOfScope),
		InvalidURLCount: atomic.LoadInt64(&o.stats.invalidURL),
		DuplicateCount:  atomic.LoadInt64(&o.stats.duplicate),
		PagesFetched:    fetched,
		PagesFailed:     failed,
	}
}
