// Package fingerprint supplies randomized browser fingerprints (viewport,
// user agent, locale, timezone) to the Fetcher Adapter, so successive
// requests do not present an identical, trivially-correlatable client
// identity. This is the extent of the engine's anti-fingerprinting
// behavior; it does not attempt active anti-bot evasion.
package fingerprint

import (
	"math/rand"
	"sync"
)

// Viewport is a browser window size in device-independent pixels.
type Viewport struct {
	Width, Height int
}

// Fingerprint is the tuple applied by the Fetcher Adapter to a single
// fetch invocation.
type Fingerprint struct {
	UserAgent string
	Viewport  Viewport
	Timezone  string
	Locale    string
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

var defaultViewports = []Viewport{
	{1920, 1080},
	{1366, 768},
	{1536, 864},
	{1440, 900},
	{1280, 720},
}

var defaultTimezones = []string{
	"America/New_York", "America/Los_Angeles", "Europe/London",
	"Europe/Berlin", "Asia/Tokyo", "Australia/Sydney",
}

var defaultLocales = []string{
	"en-US", "en-GB", "de-DE", "fr-FR", "ja-JP", "pt-BR",
}

// Source generates fingerprints. It is safe for concurrent use.
type Source struct {
	mu         sync.Mutex
	rng        *rand.Rand
	userAgents []string
	viewports  []Viewport
	timezones  []string
	locales    []string
}

// NewSource builds a fingerprint Source seeded from seed. Passing a fixed
// seed makes fingerprint sequences reproducible across runs (used by
// deterministic tests); production callers should seed from an entropy
// source such as time.Now().UnixNano().
func NewSource(seed int64) *Source {
	return &Source{
		rng:        rand.New(rand.NewSource(seed)),
		userAgents: defaultUserAgents,
		viewports:  defaultViewports,
		timezones:  defaultTimezones,
		locales:    defaultLocales,
	}
}

// Next generates a fresh Fingerprint. host is currently unused by the
// default pools but is accepted so a future per-host fingerprint pinning
// policy can be layered in without changing the call sites; per the data
// model, fingerprints are never reused deterministically within a
// session, so Next always draws a new sample.
func (s *Source) Next(host string) Fingerprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Fingerprint{
		UserAgent: s.userAgents[s.rng.Intn(len(s.userAgents))],
		Viewport:  s.viewports[s.rng.Intn(len(s.viewports))],
		Timezone:  s.timezones[s.rng.Intn(len(s.timezones))],
		Locale:    s.locales[s.rng.Intn(len(s.locales))],
	}
}
