// Package urlcanon implements the crawl engine's URL canonicalization: a
// pure function turning a raw URL string into the hash key used for
// equality, deduplication, and visited-set membership throughout the core.
package urlcanon

import (
	"errors"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidURL is returned when a raw URL cannot be canonicalized: missing
// scheme, unsupported scheme, or missing host.
var ErrInvalidURL = errors.New("urlcanon: invalid url")

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Normalize canonicalizes a raw URL string.
//
// Canonical form: lowercase scheme and host; default ports elided; path
// collapsed (duplicate slashes removed, empty path becomes "/"); trailing
// slash removed from non-root paths; query parameters sorted by key with
// stable order for repeated keys; fragment always stripped.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x) for any
// x it accepts. It performs no DNS resolution and no I/O.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidURL
	}
	return normalizeParsed(u)
}

func normalizeParsed(u *url.URL) (string, error) {
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrInvalidURL
	}
	if u.Host == "" {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if port != "" && port != defaultPorts[scheme] {
		host = host + ":" + port
	}

	path := collapseSlashes(u.EscapedPath())
	if path == "" {
		path = "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}

	query := sortedQuery(u.RawQuery)

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(path)
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	return b.String(), nil
}

// collapseSlashes removes duplicate adjacent slashes from a URL path,
// preserving a leading slash.
func collapseSlashes(path string) string {
	if path == "" {
		return ""
	}
	var b strings.Builder
	prevSlash := false
	for _, r := range path {
		if r == '/' {
			if prevSlash {
				continue
			}
			prevSlash = true
		} else {
			prevSlash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sortedQuery re-serializes a raw query string with keys sorted
// lexicographically. Repeated keys keep their relative (stable) order.
// Blank values (key=) are retained rather than dropped.
func sortedQuery(raw string) string {
	if raw == "" {
		return ""
	}
	pairs := strings.Split(raw, "&")
	type kv struct {
		key string
		raw string
		idx int
	}
	kvs := make([]kv, 0, len(pairs))
	for i, p := range pairs {
		if p == "" {
			continue
		}
		key := p
		if eq := strings.IndexByte(p, '='); eq >= 0 {
			key = p[:eq]
		}
		kvs = append(kvs, kv{key: key, raw: p, idx: i})
	}
	sort.SliceStable(kvs, func(i, j int) bool {
		return kvs[i].key < kvs[j].key
	})
	parts := make([]string, len(kvs))
	for i, e := range kvs {
		parts[i] = e.raw
	}
	return strings.Join(parts, "&")
}

// Resolve joins a possibly-relative reference against baseURL, for any
// caller (not just the link extractor) that needs to turn an
// href/src attribute into an absolute URL string before normalizing it.
func Resolve(baseURL, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	if u.IsAbs() {
		return u.String(), true
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(u).String(), true
}

// Hostname returns the lowercase hostname (without port) of an already
// canonical URL, for use by the Scope Engine's matching logic.
func Hostname(canonical string) string {
	u, err := url.Parse(canonical)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
