// Package pronunciation scores a recognized speech transcript against the word
// the learner was asked to say.
package pronunciation

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// Similarity returns how close a and b are on a 0-100 scale, based on the
// Levenshtein distance of the lowercased, trimmed strings.
// Empty input on either side scores 0, even when both are empty.
func Similarity(a, b string) int {
	a = normalizeText(a)
	b = normalizeText(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	distance := matchr.Levenshtein(a, b)
	if distance > maxLen {
		distance = maxLen
	}
	return int(math.Round(100 * float64(maxLen-distance) / float64(maxLen)))
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
