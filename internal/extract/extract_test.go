package extract

import (
	"testing"

	"github.com/duskcrawl/webcrawler/internal/failure"
)

func TestExtractAnchorsAndResolvesRelative(t *testing.T) {
	body := `<html><body>
		<a href="/about">About</a>
		<a href="https://other.example.com/x">Other</a>
		<a href="contact">Contact</a>
	</body></html>`

	res := Extract("https://example.com/base/", body)
	if res.ErrorKind != "" {
		t.Fatalf("unexpected error: %s (%v)", res.ErrorKind, res.Err)
	}

	want := map[string]bool{
		"https://example.com/about":           false,
		"https://other.example.com/x":         false,
		"https://example.com/base/contact":    false,
	}
	for _, l := range res.Links {
		if _, ok := want[l]; ok {
			want[l] = true
		}
	}
	for url, found := range want {
		if !found {
			t.Errorf("expected link %s to be extracted, got %v", url, res.Links)
		}
	}
}

func TestExtractDropsNonCrawlableSchemes(t *testing.T) {
	body := `<html><body>
		<a href="javascript:void(0)">JS</a>
		<a href="mailto:a@example.com">Mail</a>
		<a href="tel:+1234567890">Tel</a>
		<a href="#section">Frag</a>
		<a href="/ok">OK</a>
	</body></html>`

	res := Extract("https://example.com/", body)
	if len(res.Links) != 1 || res.Links[0] != "https://example.com/ok" {
		t.Errorf("expected only /ok to survive, got %v", res.Links)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	body := `<html><body>
		<a href="/dup">A</a>
		<a href="/dup">B</a>
		<a href="/dup/">C</a>
	</body></html>`

	res := Extract("https://example.com/", body)
	if len(res.Links) != 1 {
		t.Errorf("expected single deduped link, got %v", res.Links)
	}
}

func TestExtractIncludesIframeSrc(t *testing.T) {
	body := `<html><body><iframe src="/embedded"></iframe></body></html>`
	res := Extract("https://example.com/", body)
	if len(res.Links) != 1 || res.Links[0] != "https://example.com/embedded" {
		t.Errorf("expected iframe src to be extracted, got %v", res.Links)
	}
}

func TestExtractEmptyBodyYieldsNoLinksAndNoError(t *testing.T) {
	// An empty body still parses as a document, so it yields an empty
	// result rather than a ParseError for merely-sparse markup.
	res := Extract("https://example.com/", "")
	if res.ErrorKind != "" {
		t.Errorf("unexpected error on empty body: %s", res.ErrorKind)
	}
	if len(res.Links) != 0 {
		t.Errorf("expected no links from empty body, got %v", res.Links)
	}
	_ = failure.ParseError
}
