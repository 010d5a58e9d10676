package result

import "testing"

func TestAppendAndGet(t *testing.T) {
	s := NewStore()
	s.Append(PageRecord{URL: "https://example.com/", Success: true, HTTPStatus: 200})

	rec, ok := s.Get("https://example.com/")
	if !ok {
		t.Fatal("expected record to be present")
	}
	if rec.HTTPStatus != 200 {
		t.Errorf("got status %d, want 200", rec.HTTPStatus)
	}
	if s.Len() != 1 {
		t.Errorf("got len %d, want 1", s.Len())
	}
}

func TestAppendOverwritesSameURLRatherThanDuplicating(t *testing.T) {
	s := NewStore()
	s.Append(PageRecord{URL: "https://example.com/", Success: false, HTTPStatus: 503})
	s.Append(PageRecord{URL: "https://example.com/", Success: true, HTTPStatus: 200})

	if s.Len() != 1 {
		t.Fatalf("got len %d, want 1", s.Len())
	}
	rec, _ := s.Get("https://example.com/")
	if !rec.Success || rec.HTTPStatus != 200 {
		t.Errorf("expected overwritten record to reflect second append, got %+v", rec)
	}
}

func TestAllReturnsAppendOrderSnapshot(t *testing.T) {
	s := NewStore()
	s.Append(PageRecord{URL: "https://example.com/1"})
	s.Append(PageRecord{URL: "https://example.com/2"})

	all := s.All()
	if len(all) != 2 || all[0].URL != "https://example.com/1" || all[1].URL != "https://example.com/2" {
		t.Errorf("unexpected order: %+v", all)
	}

	all[0].URL = "mutated"
	if rec, _ := s.Get("https://example.com/1"); rec.URL != "https://example.com/1" {
		t.Errorf("mutating snapshot slice must not affect store, got %+v", rec)
	}
}

func TestGetMissingURL(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get("https://example.com/nope"); ok {
		t.Error("expected ok=false for missing URL")
	}
}
