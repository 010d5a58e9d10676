package contenttype

import (
	"net/http"
	"testing"
)

func header(ct string) http.Header {
	h := http.Header{}
	if ct != "" {
		h.Set("Content-Type", ct)
	}
	return h
}

func TestIsHTMLWithExplicitHTMLContentType(t *testing.T) {
	if !IsHTML(header("text/html; charset=utf-8"), nil) {
		t.Error("expected text/html to be treated as HTML")
	}
}

func TestIsHTMLWithXHTML(t *testing.T) {
	if !IsHTML(header("application/xhtml+xml"), nil) {
		t.Error("expected application/xhtml+xml to be treated as HTML")
	}
}

func TestIsHTMLRejectsExplicitBinaryContentType(t *testing.T) {
	if IsHTML(header("application/pdf"), []byte("%PDF-1.4")) {
		t.Error("expected application/pdf to be rejected regardless of body")
	}
}

func TestIsHTMLFallsBackToSniffWhenContentTypeMissing(t *testing.T) {
	body := []byte("<!DOCTYPE html><html><body>hi</body></html>")
	if !IsHTML(header(""), body) {
		t.Error("expected sniff to detect HTML body with no Content-Type header")
	}
}

func TestIsHTMLFallsBackToSniffWhenOctetStream(t *testing.T) {
	body := []byte("\x89PNG\r\n\x1a\n")
	if IsHTML(header("application/octet-stream"), body) {
		t.Error("expected binary sniff to reject image bytes")
	}
}
