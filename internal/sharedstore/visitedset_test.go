package sharedstore

import (
	"sync"
	"testing"
)

func TestVisitedSetAddIfAbsentAtMostOnceAcrossCallers(t *testing.T) {
	vs := NewVisitedSet(NewMemory(), "visited", nil)
	const n = 20
	var wg sync.WaitGroup
	won := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			won[i] = vs.AddIfAbsent("https://example.com/")
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range won {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one AddIfAbsent to win, got %d", count)
	}
	if !vs.Contains("https://example.com/") {
		t.Error("expected the claimed URL to be a member")
	}
}

func TestVisitedSetSizeAndAllReflectMembership(t *testing.T) {
	vs := NewVisitedSet(NewMemory(), "", nil)
	vs.AddIfAbsent("https://example.com/a")
	vs.AddIfAbsent("https://example.com/b")
	vs.AddIfAbsent("https://example.com/a") // duplicate, no-op

	if vs.Size() != 2 {
		t.Errorf("got size %d, want 2", vs.Size())
	}
	all := vs.All()
	if len(all) != 2 {
		t.Errorf("got %d entries from All, want 2", len(all))
	}
}

func TestVisitedSetContainsFalseForUnclaimedURL(t *testing.T) {
	vs := NewVisitedSet(NewMemory(), "visited", nil)
	vs.AddIfAbsent("https://example.com/known")

	if vs.Contains("https://example.com/unknown") {
		t.Error("expected unclaimed URL to report not contained")
	}
}
