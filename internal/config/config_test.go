package config

import (
	"os"
	"testing"
	"time"
)

func TestNewAppliesDefaults(t *testing.T) {
	s := New()
	if s.MaxDepth != defaultMaxDepth {
		t.Errorf("got MaxDepth %d, want %d", s.MaxDepth, defaultMaxDepth)
	}
	if s.Concurrency != defaultConcurrency {
		t.Errorf("got Concurrency %d, want %d", s.Concurrency, defaultConcurrency)
	}
}

func TestOptsOverrideDefaults(t *testing.T) {
	s := New(WithMaxDepth(3), WithConcurrency(16), WithRateLimit(2.5))
	if s.MaxDepth != 3 || s.Concurrency != 16 || s.RateLimit != 2.5 {
		t.Errorf("opts did not apply: %+v", s)
	}
}

func TestNewFromEnvReadsEnvironment(t *testing.T) {
	os.Setenv("MAX_DEPTH", "7")
	defer os.Unsetenv("MAX_DEPTH")

	s := NewFromEnv()
	if s.MaxDepth != 7 {
		t.Errorf("got MaxDepth %d, want 7 from env", s.MaxDepth)
	}
}

func TestFlagsWinOverEnv(t *testing.T) {
	os.Setenv("MAX_DEPTH", "7")
	defer os.Unsetenv("MAX_DEPTH")

	s := NewFromEnv(WithMaxDepth(99))
	if s.MaxDepth != 99 {
		t.Errorf("got MaxDepth %d, want 99 (flag should win)", s.MaxDepth)
	}
}

func TestFingerprintIsStableForEqualSettings(t *testing.T) {
	a := New(WithMaxDepth(4), WithConcurrency(2))
	b := New(WithMaxDepth(4), WithConcurrency(2))
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("expected equal settings to fingerprint identically: %s vs %s", a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprintDiffersOnScopeChange(t *testing.T) {
	a := New(WithScope([]string{"a.com"}, nil))
	b := New(WithScope([]string{"a.com", "b.com"}, nil))
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("expected differing scope to change fingerprint")
	}
}

func TestWithCheckpointSetsPathAndInterval(t *testing.T) {
	s := New(WithCheckpoint("/tmp/crawl.json", 10*time.Second))
	if s.CheckpointPath != "/tmp/crawl.json" || s.CheckpointEvery != 10*time.Second {
		t.Errorf("unexpected checkpoint settings: %+v", s)
	}
}
