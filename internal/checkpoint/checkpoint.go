// Package checkpoint implements the Crawl State snapshot/restore
// machinery. A Crawl State is the checkpointable unit the
// Orchestrator hands to an external persistence sink: visited URLs,
// pending work items, accumulated page records, the scope rules in
// force, and a config fingerprint, all stamped with a schema version so
// a newer snapshot is never silently misread by an older binary.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/duskcrawl/webcrawler/internal/frontier"
	"github.com/duskcrawl/webcrawler/internal/result"
)

// CurrentSchemaVersion is the schema version this binary writes and the
// newest version it can restore.
const CurrentSchemaVersion = 1

// ErrSchemaMismatch is returned by Restore when a snapshot's
// SchemaVersion is newer than CurrentSchemaVersion.
var ErrSchemaMismatch = errors.New("checkpoint: snapshot schema_version is newer than this binary supports")

// WorkItem mirrors frontier.WorkItem in a JSON-serializable shape, kept
// distinct from the in-memory type so the on-disk format doesn't change
// shape just because the in-memory one does.
type WorkItem struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
}

// CrawlState is the checkpointable snapshot.
type CrawlState struct {
	SchemaVersion    int                 `json:"schema_version"`
	Visited          []string            `json:"visited"`
	Pending          []WorkItem          `json:"pending"`
	Results          []result.PageRecord `json:"results"`
	ConfigFingerprint string             `json:"config_fingerprint"`
	ScopeRules       ScopeRulesSnapshot  `json:"scope_rules"`
	CapturedAt       time.Time           `json:"captured_at"`
}

// ScopeRulesSnapshot is the serializable form of a scope.Set's rules.
type ScopeRulesSnapshot struct {
	Includes []string `json:"includes"`
	Excludes []string `json:"excludes"`
}

// Snapshot captures a consistent Crawl State from a running frontier and
// result store. The caller MUST hold whatever consistency lock it uses
// to serialize Snapshot calls against concurrent TryEnqueue calls, so
// that Visited and Pending are captured together and continue to reflect
// the mark-at-enqueue invariant.
func Snapshot(f *frontier.Frontier, visitedURLs []string, pending []frontier.WorkItem, store *result.Store, scopeRules ScopeRulesSnapshot, configFingerprint string) CrawlState {
	pendingOut := make([]WorkItem, len(pending))
	for i, item := range pending {
		pendingOut[i] = WorkItem{URL: item.URL, Depth: item.Depth}
	}
	return CrawlState{
		SchemaVersion:     CurrentSchemaVersion,
		Visited:           visitedURLs,
		Pending:           pendingOut,
		Results:           store.All(),
		ConfigFingerprint: configFingerprint,
		ScopeRules:        scopeRules,
		CapturedAt:        timeNow(),
	}
}

// timeNow is a seam so tests can fix the clock; production always uses
// the wall clock.
var timeNow = time.Now

// Validate checks a loaded CrawlState's schema version against what this
// binary supports.
func Validate(state CrawlState) error {
	if state.SchemaVersion > CurrentSchemaVersion {
		return fmt.Errorf("%w: snapshot=%d running=%d", ErrSchemaMismatch, state.SchemaVersion, CurrentSchemaVersion)
	}
	return nil
}

// Save writes state to path as JSON.
func Save(path string, state CrawlState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("checkpoint: write %s: %w", path, err)
	}
	return nil
}

// Load reads and validates a CrawlState from path.
func Load(path string) (CrawlState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CrawlState{}, fmt.Errorf("checkpoint: read %s: %w", path, err)
	}
	var state CrawlState
	if err := json.Unmarshal(data, &state); err != nil {
		return CrawlState{}, fmt.Errorf("checkpoint: unmarshal %s: %w", path, err)
	}
	if err := Validate(state); err != nil {
		return CrawlState{}, err
	}
	return state, nil
}

// Restore replays a validated CrawlState into a fresh Frontier: every
// visited URL is restored into the Visited set first, then every
// pending work item is requeued, so the mark-at-enqueue invariant holds
// before any worker starts pulling from the queue.
func Restore(state CrawlState) (*frontier.Frontier, error) {
	if err := Validate(state); err != nil {
		return nil, err
	}
	f := frontier.NewFrontier()
	for _, url := range state.Visited {
		f.MarkVisited(url)
	}
	for _, item := range state.Pending {
		f.MarkVisited(item.URL)
		if err := f.Requeue(frontier.WorkItem{URL: item.URL, Depth: item.Depth}); err != nil {
			return nil, fmt.Errorf("checkpoint: requeue %s: %w", item.URL, err)
		}
	}
	return f, nil
}
