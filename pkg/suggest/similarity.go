package suggest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Normalize folds case, applies NFKC and collapses whitespace.
func Normalize(s string) string {
	s = folder.String(norm.NFKC.String(s))
	s = strings.ReplaceAll(s, "ё", "е")
	return strings.Join(strings.Fields(s), " ")
}

func tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ratio is 1 - editDistance/maxLen over runes.
func ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// tokenScore credits a query token that is a prefix of a candidate token (partial typing),
// otherwise falls back to edit-distance ratio.
func tokenScore(query, candidate string) float64 {
	if utf8.RuneCountInString(query) >= 3 && strings.HasPrefix(candidate, query) {
		return 1
	}
	return ratio(query, candidate)
}

// Similarity scores how well query matches candidate, in [0,1].
// Token order does not matter: every query token is matched against its best candidate token.
func Similarity(query, candidate string) float64 {
	q, c := Normalize(query), Normalize(candidate)
	if q == "" || c == "" {
		return 0
	}

	qt, ct := tokens(q), tokens(c)
	if len(qt) == 0 || len(ct) == 0 {
		return ratio(q, c)
	}

	var sum float64
	for _, t := range qt {
		best := 0.0
		for _, u := range ct {
			if s := tokenScore(t, u); s > best {
				best = s
			}
		}
		sum += best
	}
	tokenAvg := sum / float64(len(qt))

	whole := ratio(q, c)
	if whole > tokenAvg {
		return whole
	}
	return tokenAvg
}
