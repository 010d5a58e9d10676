package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// Limiter composes the global token bucket with one AdaptivePacer per
// host. The Worker Pool acquires the global token first, then the
// per-host token, in that order.
type Limiter struct {
	global *TokenBucket

	mu        sync.Mutex
	perHost   map[string]*AdaptivePacer
	rate      float64
	robotsDoc map[string]*robotstxt.RobotsData // advisory crawl-delay lookup, optional
}

// NewLimiter builds a Limiter whose global bucket has the given capacity
// and refill rate (requests/sec), and whose per-host pacers default to
// the same rate floor.
func NewLimiter(capacity int, ratePerSecond float64) *Limiter {
	return &Limiter{
		global:    NewTokenBucket(capacity, ratePerSecond),
		perHost:   make(map[string]*AdaptivePacer),
		rate:      ratePerSecond,
		robotsDoc: make(map[string]*robotstxt.RobotsData),
	}
}

func (l *Limiter) pacerFor(host string) *AdaptivePacer {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.perHost[host]
	if !ok {
		p = NewAdaptivePacer(l.rate)
		l.perHost[host] = p
	}
	return p
}

// Acquire acquires the global token then paces against the given host's
// adaptive pacer. It returns early with ctx.Err() if the global token
// wait is cancelled; the per-host pacer sleep is not cancellable (it is
// bounded and short by construction: a plain blocking sleep).
func (l *Limiter) Acquire(ctx context.Context, host string) error {
	if err := l.global.Acquire(ctx); err != nil {
		return err
	}
	l.pacerFor(host).Acquire()
	return nil
}

// ReportSuccess forwards a successful fetch outcome to the host's pacer.
func (l *Limiter) ReportSuccess(host string) {
	l.pacerFor(host).ReportSuccess()
}

// ReportError forwards a failed fetch's HTTP status to the host's pacer.
func (l *Limiter) ReportError(host string, status int) {
	l.pacerFor(host).ReportError(status)
}

// SeedFromRobots fetches host's robots.txt via httpClient (a plain
// *http.Client is enough; no engine Fetcher Adapter is needed for this
// one-off, best-effort advisory lookup) and, if it publishes a
// Crawl-delay for userAgent, seeds the host's adaptive pacer with it.
// Failure to fetch or parse robots.txt is not an error: the pacer simply
// keeps its rate-derived default.
func (l *Limiter) SeedFromRobots(httpClient *http.Client, scheme, host, userAgent string) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Second}
	}
	resp, err := httpClient.Get(scheme + "://" + host + "/robots.txt")
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return
	}
	data, err := robotstxt.FromResponse(resp)
	if err != nil || data == nil {
		return
	}
	group := data.FindGroup(userAgent)
	if group == nil || group.CrawlDelay <= 0 {
		return
	}
	l.pacerFor(host).SeedInterval(group.CrawlDelay)
}

// CurrentInterval exposes the per-host pacer's current interval, mainly
// for tests asserting backoff behavior (a 429 response widens the
// interval beyond minInterval).
func (l *Limiter) CurrentInterval(host string) time.Duration {
	return l.pacerFor(host).CurrentInterval()
}
