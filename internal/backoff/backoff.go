// Package backoff implements the Worker Pool's per-work-item retry delay
// exponential growth with jitter, separate from and composed
// with package ratelimit's per-host adaptive pacer. The pacer governs
// the steady-state rate of requests to a host; this package governs how
// long a single worker waits before re-attempting one work item that
// just failed.
package backoff

import (
	"math/rand"
	"sync"
	"time"
)

// Policy is an exponential backoff schedule: `base * 2^attempt`, jittered
// by up to ±jitterFraction and capped at max. A single Policy is shared
// across every worker in a pool, so rng is guarded by mu: *rand.Rand is
// not safe for concurrent use on its own.
type Policy struct {
	Base       time.Duration
	Max        time.Duration
	MaxRetries int
	JitterFrac float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPolicy constructs a Policy. maxRetries bounds how many times a
// worker will retry a single work item before giving up
// and recording a permanent failure.
func NewPolicy(base, max time.Duration, maxRetries int) *Policy {
	return &Policy{
		Base:       base,
		Max:        max,
		MaxRetries: maxRetries,
		JitterFrac: 0.2,
		rng:        rand.New(rand.NewSource(1)),
	}
}

// Delay returns the wait duration before retry attempt (0-indexed), or
// false once attempt has exhausted MaxRetries.
func (p *Policy) Delay(attempt int) (time.Duration, bool) {
	if attempt >= p.MaxRetries {
		return 0, false
	}
	d := p.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d > p.Max {
			d = p.Max
			break
		}
	}
	return p.jitter(d), true
}

func (p *Policy) jitter(d time.Duration) time.Duration {
	if p.JitterFrac <= 0 {
		return d
	}
	spread := float64(d) * p.JitterFrac
	p.mu.Lock()
	r := p.rng.Float64()
	p.mu.Unlock()
	delta := (r*2 - 1) * spread
	jittered := time.Duration(float64(d) + delta)
	if jittered < 0 {
		return 0
	}
	return jittered
}

// Exhausted reports whether attempt has used up all allowed retries.
func (p *Policy) Exhausted(attempt int) bool {
	return attempt >= p.MaxRetries
}
