package fetcher

import (
	"strings"

	"golang.org/x/net/html"
)

// extractTitle does a cheap single-pass scan for the document's <title>
// text, independent of the Link Extractor's own parse so a title is
// still available on the PageOutcome even if link extraction later fails
// and falls back to its tokenizer path.
func extractTitle(body string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(body))
	inTitle := false
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(tokenizer.Text()))
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "title" {
				inTitle = false
			}
		}
	}
}
