// Package extract implements link extraction: a purely
// computational step that turns a base URL and an HTML body into a
// deduplicated list of canonical, in-bounds-looking URLs. The primary
// parser is goquery, extracting both anchor and iframe sources;
// a golang.org/x/net/html streaming tokenizer is the fallback used when
// the goquery DOM parse itself errors, so a single malformed document
// degrades to a best-effort scan instead of aborting the page.
package extract

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/duskcrawl/webcrawler/internal/failure"
	"github.com/duskcrawl/webcrawler/internal/urlcanon"
)

// droppedSchemes are link schemes that never represent fetchable crawl
// targets.
var droppedSchemes = []string{"javascript:", "mailto:", "tel:"}

// Result is the outcome of an extraction pass: the deduplicated,
// canonicalized links found, plus a classified error when even the
// fallback tokenizer could not make sense of the body.
type Result struct {
	Links     []string
	ErrorKind failure.Kind
	Err       error
}

// Extract parses html for anchor href and iframe src attributes, resolves
// them against baseURL, drops non-crawlable schemes and empty-fragment
// links, normalizes each survivor via package urlcanon, and deduplicates.
func Extract(baseURL string, htmlBody string) Result {
	links, err := extractWithGoquery(baseURL, htmlBody)
	if err != nil {
		links, err = extractWithTokenizer(baseURL, htmlBody)
		if err != nil {
			return Result{ErrorKind: failure.ParseError, Err: err}
		}
	}
	return Result{Links: dedupeAndCanonicalize(links)}
}

func extractWithGoquery(baseURL string, htmlBody string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return nil, err
	}
	var raw []string
	doc.Find("a[href], iframe[src]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			raw = append(raw, href)
		}
		if src, ok := sel.Attr("src"); ok {
			raw = append(raw, src)
		}
	})
	return resolveAll(baseURL, raw), nil
}

// extractWithTokenizer is the ParseError-recovery fallback: a
// single forward pass over the token stream, tolerant of the kind of
// malformed markup that can make goquery's full-document parse fail.
func extractWithTokenizer(baseURL string, htmlBody string) ([]string, error) {
	tokenizer := html.NewTokenizer(strings.NewReader(htmlBody))
	var raw []string
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if err := tokenizer.Err(); err != io.EOF {
				return nil, err
			}
			return resolveAll(baseURL, raw), nil
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		token := tokenizer.Token()
		var wantAttr string
		switch token.DataAtom {
		case atom.A:
			wantAttr = "href"
		case atom.Iframe:
			wantAttr = "src"
		default:
			continue
		}
		for _, a := range token.Attr {
			if a.Key == wantAttr {
				raw = append(raw, a.Val)
			}
		}
	}
}

func resolveAll(baseURL string, raw []string) []string {
	resolved := make([]string, 0, len(raw))
	for _, href := range raw {
		if u, ok := resolveRelativeURL(baseURL, href); ok {
			resolved = append(resolved, u)
		}
	}
	return resolved
}

func resolveRelativeURL(baseURL, relative string) (string, bool) {
	relative = strings.TrimSpace(relative)
	if relative == "" || strings.HasPrefix(relative, "#") {
		return "", false
	}
	lower := strings.ToLower(relative)
	for _, scheme := range droppedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}
	return urlcanon.Resolve(baseURL, relative)
}

func dedupeAndCanonicalize(links []string) []string {
	seen := make(map[string]struct{}, len(links))
	out := make([]string, 0, len(links))
	for _, link := range links {
		canon, err := urlcanon.Normalize(link)
		if err != nil {
			continue
		}
		if _, ok := seen[canon]; ok {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, canon)
	}
	return out
}
