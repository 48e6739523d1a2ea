// Package slug turns free text into Zendesk tag values.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	stripRe     = regexp.MustCompile(`[^A-Za-z0-9_\s\v-]`)
	hyphenateRe = regexp.MustCompile(`[-_\s\v]+`)
)

// Make returns the slug of value: NFKD-folded to ASCII, stripped of anything
// outside [A-Za-z0-9_-] and whitespace (\v included), lowercased, with runs of
// '-', '_' and whitespace collapsed to a single '-' and no leading or
// trailing '-'.
func Make(value string) string {
	folded, _, err := transform.String(asciiFolder(), value)
	if err != nil {
		folded = value
	}
	s := stripRe.ReplaceAllString(folded, "")
	s = strings.ToLower(s)
	s = hyphenateRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func asciiFolder() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
}
