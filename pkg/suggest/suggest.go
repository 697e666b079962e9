// Package suggest ranks free text against candidate names and resolves attributes through ordered fallbacks.
package suggest

import (
	"sort"
	"strings"
)

// DefaultThreshold is the minimum score a candidate needs to be suggested.
const DefaultThreshold = 0.6

type Match struct {
	Candidate string  `json:"candidate"`
	Score     float64 `json:"score"`
}

type Suggester struct {
	threshold float64
}

func NewSuggester(threshold float64) *Suggester {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Suggester{threshold: threshold}
}

func (s *Suggester) Threshold() float64 {
	return s.threshold
}

// Suggest returns up to limit candidates scoring at or above the threshold,
// by descending score and then by name. An empty result means nothing matched.
func (s *Suggester) Suggest(text string, candidates []string, limit int) []Match {
	if strings.TrimSpace(text) == "" || len(candidates) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(candidates))
	matches := make([]Match, 0)
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true

		if score := Similarity(text, c); score >= s.threshold {
			matches = append(matches, Match{Candidate: c, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Candidate < matches[j].Candidate
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Names flattens matches into candidate names.
func Names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Candidate
	}
	return out
}
