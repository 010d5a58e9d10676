package sharedstore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryAddIfAbsentAtMostOnce(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	const n = 20
	var wg sync.WaitGroup
	added := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := a.AddIfAbsent(ctx, "visited", "https://example.com/")
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			added[i] = ok
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range added {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one AddIfAbsent to win, got %d", count)
	}
}

func TestMemoryEnqueueDequeueFIFO(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	a.Enqueue(ctx, "q", []byte("first"))
	a.Enqueue(ctx, "q", []byte("second"))

	item, ok, err := a.Dequeue(ctx, "q", time.Second)
	if err != nil || !ok || string(item) != "first" {
		t.Fatalf("got %q, ok=%v, err=%v", item, ok, err)
	}
}

func TestMemoryDequeueTimesOutWhenEmpty(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	_, ok, err := a.Dequeue(ctx, "empty", 20*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected ok=false on timeout")
	}
}

func TestMemoryMembersReturnsSetContents(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	a.AddIfAbsent(ctx, "visited", "https://example.com/a")
	a.AddIfAbsent(ctx, "visited", "https://example.com/b")

	members, err := a.Members(ctx, "visited")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("got %d members, want 2", len(members))
	}
}

func TestMemoryAppendAndReadResults(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	a.AppendResult(ctx, "results", []byte("r1"))
	a.AppendResult(ctx, "results", []byte("r2"))

	all, err := a.ReadResults(ctx, "results")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || string(all[0]) != "r1" || string(all[1]) != "r2" {
		t.Errorf("unexpected results: %v", all)
	}
}

func TestMemoryRegisterUnregisterWorker(t *testing.T) {
	a := NewMemory()
	ctx := context.Background()
	if err := a.RegisterWorker(ctx, "worker-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.UnregisterWorker(ctx, "worker-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
