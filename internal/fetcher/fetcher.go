// Package fetcher implements the injectable
// capability a worker calls to turn a URL into a PageOutcome. The HTTP
// implementation uses a rehttp-backed retrying transport wrapped by a
// fingerprint- and deadline-aware
// `Fetch(ctx, url, fingerprint, opts)` returning a PageOutcome whose
// success/failure is represented as a classified error kind rather
// than a bare error.
package fetcher

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/rehttp"

	"github.com/duskcrawl/webcrawler/internal/contenttype"
	"github.com/duskcrawl/webcrawler/internal/failure"
	"github.com/duskcrawl/webcrawler/internal/fingerprint"
)

// maxBodySniffBytes bounds how much of a response body is read before
// the content-type guard decides whether the rest is worth reading.
const maxBodySniffBytes = 512

// maxBodyBytes caps how much of a response body is buffered into a
// PageOutcome, guarding against unbounded memory growth on a
// misbehaving or enormous response.
const maxBodyBytes = 10 << 20 // 10 MiB

// Options controls a single Fetch call's behavior, layered on top of the
// adapter's own configured defaults.
type Options struct {
	// Timeout bounds the whole fetch, including any redirects. Zero means
	// use the adapter's configured default.
	Timeout time.Duration
}

// PageOutcome is everything the Worker Pool needs to build a Page Record
// and continue link discovery. ErrorKind is the empty string on
// success.
type PageOutcome struct {
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       string
	Title      string
	ErrorKind  failure.Kind
	Err        error
}

// Fetcher is the adapter contract: fetch a URL under a fingerprint and a
// deadline, producing a PageOutcome whose errors are classified rather
// than thrown.
type Fetcher interface {
	Fetch(ctx context.Context, url string, fp fingerprint.Fingerprint, opts Options) PageOutcome
}

// httpFetcher is the HTTP-client-based Fetcher implementation.
type httpFetcher struct {
	client         *http.Client
	defaultTimeout time.Duration
}

// New constructs an HTTP-based Fetcher, using a retrying
// transport (rehttp.NewTransport wrapping http.Transport, exponential
// jittered delay, retry on temporary errors) as the default
// http.RoundTripper.
func New(defaultTimeout time.Duration) Fetcher {
	transport := rehttp.NewTransport(
		&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: false},
		},
		rehttp.RetryAll(rehttp.RetryMaxRetries(3), rehttp.RetryTemporaryErr()),
		rehttp.ExpJitterDelay(200*time.Millisecond, 5*time.Second),
	)
	return &httpFetcher{
		client:         &http.Client{Transport: transport},
		defaultTimeout: defaultTimeout,
	}
}

// Fetch performs a single GET request to url, applying fp's fingerprint
// to the request headers, honoring opts.Timeout (or the adapter's
// default) as a hard deadline, and classifying any failure into a Kind.
func (f *httpFetcher) Fetch(ctx context.Context, rawURL string, fp fingerprint.Fingerprint, opts Options) PageOutcome {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = f.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return PageOutcome{ErrorKind: failure.InvalidURL, Err: err}
	}
	applyFingerprint(req, fp)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return PageOutcome{ErrorKind: failure.FetchTimeout, Err: err}
		}
		return PageOutcome{ErrorKind: failure.TransportError, Err: err}
	}
	defer resp.Body.Close()

	if kind := failure.FromHTTPStatus(resp.StatusCode); kind != "" {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySniffBytes))
		return PageOutcome{
			FinalURL:   resp.Request.URL.String(),
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			ErrorKind:  kind,
			Err:        err,
		}
	}

	sniff := make([]byte, maxBodySniffBytes)
	n, _ := io.ReadFull(resp.Body, sniff)
	sniff = sniff[:n]

	if !contenttype.IsHTML(resp.Header, sniff) {
		return PageOutcome{
			FinalURL:   resp.Request.URL.String(),
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
		}
	}

	rest, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes-int64(len(sniff))))
	if err != nil {
		return PageOutcome{
			FinalURL:   resp.Request.URL.String(),
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			ErrorKind:  failure.TransportError,
			Err:        err,
		}
	}
	body := append(sniff, rest...)

	return PageOutcome{
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(body),
		Title:      extractTitle(string(body)),
	}
}

// applyFingerprint sets request headers derived from fp, the HTTP-level
// analogue of a browser launching with a given profile.
func applyFingerprint(req *http.Request, fp fingerprint.Fingerprint) {
	if fp.UserAgent != "" {
		req.Header.Set("User-Agent", fp.UserAgent)
	}
	if fp.Locale != "" {
		req.Header.Set("Accept-Language", fp.Locale)
	}
}
