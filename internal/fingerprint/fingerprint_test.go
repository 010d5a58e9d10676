package fingerprint

import "testing"

func TestNextProducesNonEmptyFields(t *testing.T) {
	src := NewSource(42)
	fp := src.Next("example.com")
	if fp.UserAgent == "" || fp.Viewport.Width == 0 || fp.Timezone == "" || fp.Locale == "" {
		t.Fatalf("fingerprint has empty fields: %+v", fp)
	}
}

func TestNextVariesAcrossCalls(t *testing.T) {
	src := NewSource(1)
	seen := map[Fingerprint]bool{}
	for i := 0; i < 50; i++ {
		seen[src.Next("example.com")] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected varied fingerprints across calls, got %d distinct out of 50", len(seen))
	}
}

func TestDeterministicWithFixedSeed(t *testing.T) {
	a := NewSource(7)
	b := NewSource(7)
	for i := 0; i < 10; i++ {
		fa := a.Next("x")
		fb := b.Next("x")
		if fa != fb {
			t.Fatalf("same seed produced different sequences at step %d: %+v != %+v", i, fa, fb)
		}
	}
}
