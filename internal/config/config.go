// Package config defines the crawler's Settings and the functional-option
// construction pattern: a Settings/Opt pair extended to
// the CLI's registered flags, with environment-variable-backed defaults
// read through a small env helper package.
package config

import (
	"fmt"
	"time"

	"github.com/duskcrawl/webcrawler/internal/env"
)

const (
	defaultUserAgent      = "Mozilla/5.0 (compatible; duskcrawlbot/1.0; +https://duskcrawl.example/bot)"
	defaultMaxDepth        = 16
	defaultConcurrency     = 8
	defaultFetchTimeout    = 10 * time.Second
	defaultRateLimit       = 5.0 // requests per second, global token bucket
	defaultMaxRetries      = 3
	defaultDequeueTimeout  = 500 * time.Millisecond
	defaultCheckpointEvery = 30 * time.Second
)

// Settings holds every tunable the Orchestrator and its collaborators
// need for a single crawl run.
type Settings struct {
	UserAgent       string
	MaxDepth        int
	Concurrency     int
	FetchTimeout    time.Duration
	RateLimit       float64
	MaxRetries      int
	DequeueTimeout  time.Duration
	PageCap         int
	IncludePatterns []string
	ExcludePatterns []string
	CheckpointPath  string
	CheckpointEvery time.Duration
	SharedStoreAddr string // empty means local mode
}

// Opt is the functional-option type applied to a Settings value.
type Opt func(*Settings)

// WithMaxDepth overrides MaxDepth.
func WithMaxDepth(d int) Opt { return func(s *Settings) { s.MaxDepth = d } }

// WithConcurrency overrides Concurrency.
func WithConcurrency(n int) Opt { return func(s *Settings) { s.Concurrency = n } }

// WithRateLimit overrides RateLimit.
func WithRateLimit(rps float64) Opt { return func(s *Settings) { s.RateLimit = rps } }

// WithFetchTimeout overrides FetchTimeout.
func WithFetchTimeout(d time.Duration) Opt { return func(s *Settings) { s.FetchTimeout = d } }

// WithMaxRetries overrides MaxRetries.
func WithMaxRetries(n int) Opt { return func(s *Settings) { s.MaxRetries = n } }

// WithPageCap overrides PageCap (0 means unbounded).
func WithPageCap(n int) Opt { return func(s *Settings) { s.PageCap = n } }

// WithScope overrides the include/exclude pattern lists.
func WithScope(include, exclude []string) Opt {
	return func(s *Settings) {
		s.IncludePatterns = include
		s.ExcludePatterns = exclude
	}
}

// WithCheckpoint overrides the checkpoint path and interval.
func WithCheckpoint(path string, every time.Duration) Opt {
	return func(s *Settings) {
		s.CheckpointPath = path
		s.CheckpointEvery = every
	}
}

// WithSharedStore enables distributed mode against addr.
func WithSharedStore(addr string) Opt { return func(s *Settings) { s.SharedStoreAddr = addr } }

// New constructs Settings from built-in defaults, then applies opts.
func New(opts ...Opt) *Settings {
	s := &Settings{
		UserAgent:      defaultUserAgent,
		MaxDepth:       defaultMaxDepth,
		Concurrency:    defaultConcurrency,
		FetchTimeout:   defaultFetchTimeout,
		RateLimit:      defaultRateLimit,
		MaxRetries:     defaultMaxRetries,
		DequeueTimeout: defaultDequeueTimeout,
		CheckpointEvery: defaultCheckpointEvery,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromEnv constructs Settings by reading environment-variable
// defaults first, then applying opts
// on top so CLI flags always win over the environment.
func NewFromEnv(opts ...Opt) *Settings {
	s := New(func(s *Settings) {
		s.UserAgent = env.GetEnv("USERAGENT", defaultUserAgent)
		s.MaxDepth = env.GetEnvAsInt("MAX_DEPTH", defaultMaxDepth)
		s.Concurrency = env.GetEnvAsInt("CONCURRENCY", defaultConcurrency)
		s.FetchTimeout = env.GetEnvAsDuration("FETCHING_TIMEOUT", defaultFetchTimeout)
		s.RateLimit = env.GetEnvAsFloat("RATE_LIMIT", defaultRateLimit)
		s.MaxRetries = env.GetEnvAsInt("MAX_RETRIES", defaultMaxRetries)
	})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fingerprint produces a short, stable string summarizing the settings
// that affect crawl semantics, so a resumed checkpoint can detect it was
// asked to continue under materially different settings.
func (s *Settings) Fingerprint() string {
	return fmt.Sprintf("ua=%s|depth=%d|conc=%d|rate=%.2f|scope=%d/%d",
		s.UserAgent, s.MaxDepth, s.Concurrency, s.RateLimit,
		len(s.IncludePatterns), len(s.ExcludePatterns))
}
