// Package result defines the page record data model and an append-only
// store for them, the terminal artifact the rest of the engine produces
// one of per attempted fetch. The store has no size limit of its own.
package result

import (
	"sync"
	"time"

	"github.com/duskcrawl/webcrawler/internal/failure"
	"github.com/duskcrawl/webcrawler/internal/fingerprint"
)

// PageRecord is the immutable record of a single attempted fetch.
// Immutable once stored: nothing in this package mutates a PageRecord
// after Append returns.
type PageRecord struct {
	URL             string
	HTTPStatus      int
	Success         bool
	Title           string
	Headers         map[string][]string
	DiscoveredLinks []string
	Depth           int
	StartedAt       time.Time
	CompletedAt     time.Time
	ErrorKind       failure.Kind // empty on success, except ParseError when link extraction failed
	ContentHash     string
	FingerprintUsed fingerprint.Fingerprint
}

// Store is a lock-protected, append-only log of PageRecords, specialized
// to the crawl's terminal output rather than a generic string cache.
type Store struct {
	mu      sync.RWMutex
	records []PageRecord
	byURL   map[string]int
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{byURL: make(map[string]int)}
}

// Append records a completed PageRecord. Appending a second record for a
// URL already present overwrites its slot rather than duplicating it,
// since the dedup invariant guarantees the caller never
// legitimately produces two records for the same URL.
func (s *Store) Append(r PageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.byURL[r.URL]; ok {
		s.records[idx] = r
		return
	}
	s.byURL[r.URL] = len(s.records)
	s.records = append(s.records, r)
}

// Len returns the number of distinct Page Records stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a snapshot copy of every stored PageRecord, in append
// order.
func (s *Store) All() []PageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Get returns the PageRecord for url, if one has been stored.
func (s *Store) Get(url string) (PageRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byURL[url]
	if !ok {
		return PageRecord{}, false
	}
	return s.records[idx], true
}
