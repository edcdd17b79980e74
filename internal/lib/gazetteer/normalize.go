package gazetteer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes combining marks after NFD decomposition, reducing
// accented Latin characters to their base letters.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowers the text, strips diacritics, and collapses punctuation
// and whitespace runs into single spaces.
func Normalize(text string) string {
	stripped, _, err := transform.String(stripAccents, text)
	if err != nil {
		// Transform failures on valid UTF-8 are not expected; fall back to
		// the raw text rather than losing the query.
		stripped = text
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToLower(stripped) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity is the positional character-match ratio between two words. It
// returns 0 for words of incomparable length (difference above one rune)
// and otherwise the fraction of positions with equal runes, relative to the
// longer word. 1.0 means identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(longer)-len(shorter) > 1 {
		return 0
	}

	matches := 0
	for i := range shorter {
		if shorter[i] == longer[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(longer))
}
