// Package worker implements the worker pool: N goroutines that
// pull work items from the Frontier, acquire rate-limit tokens, invoke
// the Fetcher Adapter, extract and admit new links, and retry
// transient failures with backoff before recording a terminal Page
// Record. The goroutine-plus-semaphore shape replaces
// a single nested fetch loop with a fixed worker pool pulling from a
// shared frontier; each worker is panic-safe and always produces
// exactly one outcome per dequeued item.
package worker

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/duskcrawl/webcrawler/internal/backoff"
	"github.com/duskcrawl/webcrawler/internal/contenthash"
	"github.com/duskcrawl/webcrawler/internal/extract"
	"github.com/duskcrawl/webcrawler/internal/failure"
	"github.com/duskcrawl/webcrawler/internal/fetcher"
	"github.com/duskcrawl/webcrawler/internal/fingerprint"
	"github.com/duskcrawl/webcrawler/internal/frontier"
	"github.com/duskcrawl/webcrawler/internal/messaging"
	"github.com/duskcrawl/webcrawler/internal/ratelimit"
	"github.com/duskcrawl/webcrawler/internal/result"
	"github.com/duskcrawl/webcrawler/internal/scope"
	"github.com/duskcrawl/webcrawler/internal/urlcanon"
)

// Config bundles everything a Pool needs beyond the dependencies it's
// constructed with.
type Config struct {
	NumWorkers     int
	MaxDepth       int
	FetchTimeout   time.Duration
	DequeueTimeout time.Duration
}

// Pool is the worker pool.
type Pool struct {
	cfg        Config
	frontier   *frontier.Frontier
	limiter    *ratelimit.Limiter
	fetch      fetcher.Fetcher
	scope      *scope.Set
	fps        *fingerprint.Source
	backoff    *backoff.Policy
	store      *result.Store
	notify     *messaging.NotifySink
	logger     *log.Logger
	capReached atomic.Bool
	userAgent  string
}

// StopAdmitting tells the pool to stop submitting newly discovered links
// for admission once the Orchestrator's page cap has been reached
// in-flight fetches still complete and their page records are
// still stored, but their links are dropped rather than enqueued, and
// each worker exits instead of dequeuing another item.
func (p *Pool) StopAdmitting() {
	p.capReached.Store(true)
}

// New constructs a Pool. notify may be nil, in which case page-completion
// events are not published anywhere but the Result Store. userAgent is
// stored on the Pool but not read by it (robots.txt crawl-delay seeding
// is done by the caller through the rate limiter) and may be empty.
func New(cfg Config, f *frontier.Frontier, limiter *ratelimit.Limiter, fetch fetcher.Fetcher, scopeSet *scope.Set, fps *fingerprint.Source, bo *backoff.Policy, store *result.Store, notify *messaging.NotifySink, logger *log.Logger, userAgent string) *Pool {
	if logger == nil {
		logger = log.New(logDiscard{}, "worker: ", log.LstdFlags)
	}
	return &Pool{
		cfg:       cfg,
		frontier:  f,
		limiter:   limiter,
		fetch:     fetch,
		scope:     scopeSet,
		fps:       fps,
		backoff:   bo,
		store:     store,
		notify:    notify,
		logger:    logger,
		userAgent: userAgent,
	}
}

type logDiscard struct{}

func (logDiscard) Write(p []byte) (int, error) { return len(p), nil }

// Run spawns cfg.NumWorkers goroutines and blocks until ctx is canceled
// and every worker has exited.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.cfg.NumWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) loop(ctx context.Context, id int) {
	dequeueTimeout := p.cfg.DequeueTimeout
	if dequeueTimeout <= 0 {
		dequeueTimeout = 500 * time.Millisecond
	}
	for {
		if ctx.Err() != nil || p.capReached.Load() {
			return
		}
		item, err := p.frontier.Dequeue(dequeueTimeout)
		if err != nil {
			if err == frontier.ErrQueueClosed {
				return
			}
			// ErrDequeueTimeout: the orchestrator owns the drain decision by
			// polling Size and InFlight; a worker just keeps polling until
			// canceled or closed.
			continue
		}
		p.handle(ctx, item)
	}
}

// handle processes exactly one work item end to end, guaranteeing
// task_done is acknowledged in every path, including a
// worker goroutine panic.
func (p *Pool) handle(ctx context.Context, item frontier.WorkItem) {
	defer p.frontier.TaskDone()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Printf("recovered from panic processing %s: %v", item.URL, r)
			p.store.Append(result.PageRecord{
				URL:         item.URL,
				Success:     false,
				Depth:       item.Depth,
				StartedAt:   time.Now(),
				CompletedAt: time.Now(),
				ErrorKind:   failure.TransportError,
			})
		}
	}()
	p.attempt(ctx, item, 0)
}

func (p *Pool) attempt(ctx context.Context, item frontier.WorkItem, retryCount int) {
	host := urlcanon.Hostname(item.URL)
	started := time.Now()

	if err := p.limiter.Acquire(ctx, host); err != nil {
		p.recordFailure(item, started, failure.CancelledShutdown, fingerprint.Fingerprint{})
		return
	}

	fp := p.fps.Next(host)
	outcome := p.fetch.Fetch(ctx, item.URL, fp, fetcher.Options{Timeout: p.cfg.FetchTimeout})

	if outcome.ErrorKind != "" {
		if failure.Kind(outcome.ErrorKind).DrivesBackoff() {
			p.limiter.ReportError(host, outcome.StatusCode)
		}
		if failure.Kind(outcome.ErrorKind).Retryable() {
			if delay, ok := p.backoff.Delay(retryCount); ok {
				select {
				case <-ctx.Done():
				case <-time.After(delay):
					p.attempt(ctx, item, retryCount+1)
					return
				}
				p.recordFailure(item, started, failure.CancelledShutdown, fp)
				return
			}
		}
		p.recordFailure(item, started, outcome.ErrorKind, fp)
		return
	}

	p.limiter.ReportSuccess(host)
	p.recordSuccess(item, started, outcome, fp)
}

func (p *Pool) recordSuccess(item frontier.WorkItem, started time.Time, outcome fetcher.PageOutcome, fp fingerprint.Fingerprint) {
	extracted := extract.Extract(outcome.FinalURL, outcome.Body)

	record := result.PageRecord{
		URL:             item.URL,
		HTTPStatus:      outcome.StatusCode,
		Success:         true,
		Title:           outcome.Title,
		Headers:         outcome.Headers,
		DiscoveredLinks: extracted.Links,
		Depth:           item.Depth,
		StartedAt:       started,
		CompletedAt:     time.Now(),
		ContentHash:     contenthash.Compute(outcome.Title, outcome.Body),
		FingerprintUsed: fp,
	}
	if extracted.ErrorKind != "" {
		record.ErrorKind = extracted.ErrorKind
	}
	p.store.Append(record)
	p.publish(record)

	if p.capReached.Load() {
		return
	}
	if item.Depth+1 > p.cfg.MaxDepth {
		return
	}
	for _, link := range extracted.Links {
		if p.scope.Decide(urlcanon.Hostname(link)) != scope.In {
			continue
		}
		p.frontier.TryEnqueue(link, item.Depth+1)
	}
}

func (p *Pool) recordFailure(item frontier.WorkItem, started time.Time, kind failure.Kind, fp fingerprint.Fingerprint) {
	record := result.PageRecord{
		URL:             item.URL,
		Success:         false,
		Depth:           item.Depth,
		StartedAt:       started,
		CompletedAt:     time.Now(),
		ErrorKind:       kind,
		FingerprintUsed: fp,
	}
	p.store.Append(record)
	p.publish(record)
}

func (p *Pool) publish(record result.PageRecord) {
	if p.notify == nil {
		return
	}
	p.notify.Notify([]byte(record.URL))
}
