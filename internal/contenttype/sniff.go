// Package contenttype implements the protocol/content-type detection
// guard: before a fetched body
// is handed to the Link Extractor, it decides whether the body is HTML
// worth parsing at all, so binary payloads (PDFs, images, archives)
// short-circuit with an empty link list instead of being fed to goquery.
package contenttype

import (
	"net/http"
	"strings"
)

// htmlContentTypePrefixes are the Content-Type values treated as
// parseable markup. Anything else, or a missing header combined with a
// binary-looking sniff, is not.
var htmlContentTypePrefixes = []string{
	"text/html",
	"application/xhtml+xml",
}

// IsHTML reports whether a response should be routed to the Link
// Extractor, based on its Content-Type header and, when that header is
// absent or generic, a sniff of the first bytes of the body via the
// standard library's content sniffing table.
func IsHTML(header http.Header, bodySample []byte) bool {
	if ct := header.Get("Content-Type"); ct != "" {
		mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
		for _, prefix := range htmlContentTypePrefixes {
			if mediaType == prefix {
				return true
			}
		}
		// An explicit, non-HTML, non-generic Content-Type is authoritative:
		// a server that says "application/pdf" is not lying about it.
		if mediaType != "" && mediaType != "application/octet-stream" {
			return false
		}
	}
	sniffed := http.DetectContentType(bodySample)
	return strings.HasPrefix(sniffed, "text/html") ||
		strings.HasPrefix(sniffed, "text/plain")
}
