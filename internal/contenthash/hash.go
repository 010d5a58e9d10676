// Package contenthash computes the Page Record `content_hash` field
// a blake3 digest of the page body, keyed on its title after
// stemming so that locale or punctuation variants of the same title
// ("Pricing" vs "Pricing!" vs "pricing") hash identically and don't
// register as novel content on a re-crawl.
package contenthash

import (
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"lukechampine.com/blake3"
)

// Compute returns the hex-encoded blake3 hash of title's stem joined with
// body. Each title word is lowercased and stripped of leading and
// trailing punctuation before stemming; a word snowball cannot stem is
// kept in that form, so a page never goes unhashed over a cosmetic
// normalization step.
func Compute(title string, body string) string {
	stemmed := stemTitle(title)
	h := blake3.New(32, nil)
	h.Write([]byte(stemmed))
	h.Write([]byte{0})
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}

func stemTitle(title string) string {
	words := strings.Fields(strings.ToLower(title))
	stems := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if w == "" {
			continue
		}
		stem, err := snowball.Stem(w, "english", true)
		if err != nil || stem == "" {
			stems = append(stems, w)
			continue
		}
		stems = append(stems, stem)
	}
	return strings.Join(stems, " ")
}
