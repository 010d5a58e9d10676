package sharedstore

import (
	"context"
	"io"
	"log"
	"time"
)

// VisitedSet adapts an Adapter's set primitive into frontier.VisitedSet,
// the distributed-mode plug-in for NewFrontierWithVisitedSet: every
// AddIfAbsent race is settled by the shared broker instead of an
// in-process map, so two crawler processes pointed at the same Adapter
// never both claim the same URL.
type VisitedSet struct {
	adapter Adapter
	setName string
	timeout time.Duration
	logger  *log.Logger
}

// NewVisitedSet constructs a VisitedSet backed by adapter, storing
// membership under setName ("visited" if empty). logger may be nil, in
// which case adapter errors are swallowed silently; AddIfAbsent/Contains
// fail closed (false) on an adapter error rather than risk a duplicate
// fetch or a false membership claim.
func NewVisitedSet(adapter Adapter, setName string, logger *log.Logger) *VisitedSet {
	if setName == "" {
		setName = "visited"
	}
	if logger == nil {
		logger = log.New(io.Discard, "sharedstore: ", log.LstdFlags)
	}
	return &VisitedSet{adapter: adapter, setName: setName, timeout: 5 * time.Second, logger: logger}
}

// AddIfAbsent atomically adds url to the shared set via the Adapter,
// reporting whether this call performed the insertion.
func (v *VisitedSet) AddIfAbsent(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	added, err := v.adapter.AddIfAbsent(ctx, v.setName, url)
	if err != nil {
		v.logger.Printf("AddIfAbsent %s: %v", url, err)
		return false
	}
	return added
}

// Contains reports whether url has already been claimed by any process
// sharing this Adapter.
func (v *VisitedSet) Contains(url string) bool {
	members, err := v.members()
	if err != nil {
		v.logger.Printf("Contains %s: %v", url, err)
		return false
	}
	for _, m := range members {
		if m == url {
			return true
		}
	}
	return false
}

// Size returns the number of distinct URLs claimed across every process
// sharing this Adapter.
func (v *VisitedSet) Size() int {
	members, err := v.members()
	if err != nil {
		v.logger.Printf("Size: %v", err)
		return 0
	}
	return len(members)
}

// All returns every URL claimed across every process sharing this
// Adapter, for checkpointing.
func (v *VisitedSet) All() []string {
	members, err := v.members()
	if err != nil {
		v.logger.Printf("All: %v", err)
		return nil
	}
	return members
}

func (v *VisitedSet) members() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return v.adapter.Members(ctx, v.setName)
}
