package pronunciation

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// confusionPair is a pair of letter sequences that English learners commonly
// swap when speaking. The order of confusionPairs matters: each rewrite
// operates on the output of the previous one.
type confusionPair struct {
	a string
	b string
}

var confusionPairs = []confusionPair{
	{"th", "d"},
	{"th", "t"},
	{"th", "f"},
	{"th", "v"},
	{"r", "l"},
	{"w", "v"},
	{"sh", "s"},
	{"sh", "ch"},
	{"ch", "j"},
	{"ng", "n"},
	{"ph", "f"},
	{"tion", "shun"},
	{"sion", "zhun"},
}

// Normalize rewrites the sounds in spoken that are commonly confused with
// the ones used in target, so that "fing" spoken for "thing" becomes "thing".
func Normalize(spoken, target string) string {
	spoken = normalizeText(spoken)
	target = normalizeText(target)

	// Conditions look at the original transcript; rewrites accumulate on adjusted.
	adjusted := spoken
	for _, p := range confusionPairs {
		if strings.Contains(spoken, p.b) && strings.Contains(target, p.a) {
			adjusted = strings.ReplaceAll(adjusted, p.b, p.a)
		}
		if strings.Contains(spoken, p.a) && strings.Contains(target, p.b) {
			adjusted = strings.ReplaceAll(adjusted, p.a, p.b)
		}
	}
	return adjusted
}

// PhoneticSimilarity is Similarity after forgiving common phoneme confusions.
func PhoneticSimilarity(spoken, target string) int {
	return Similarity(Normalize(spoken, target), target)
}

// soundsAlike reports whether the Double Metaphone codes of both strings
// share a code. It is informational only.
func soundsAlike(spoken, target string) bool {
	spoken = normalizeText(spoken)
	target = normalizeText(target)
	if spoken == "" || target == "" {
		return false
	}

	sp, ss := matchr.DoubleMetaphone(spoken)
	tp, ts := matchr.DoubleMetaphone(target)
	for _, s := range []string{sp, ss} {
		if s == "" {
			continue
		}
		if s == tp || s == ts {
			return true
		}
	}
	return false
}
