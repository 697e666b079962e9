package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest_Scenarios(t *testing.T) {
	s := NewSuggester(0.6)

	got := s.Suggest("Ivanoff", []string{"Ivanov I.I.", "Petrov P.P."}, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "Ivanov I.I.", got[0].Candidate)
	assert.GreaterOrEqual(t, got[0].Score, 0.6)

	assert.Empty(t, s.Suggest("Ivanoff", []string{"Smirnov S.S."}, 5))
}

func TestSuggest_EmptyInputs(t *testing.T) {
	s := NewSuggester(0.6)
	assert.Empty(t, s.Suggest("", []string{"Ivanov"}, 5))
	assert.Empty(t, s.Suggest("   ", []string{"Ivanov"}, 5))
	assert.Empty(t, s.Suggest("Ivanov", nil, 5))
}

func TestSuggest_OrderAndLimit(t *testing.T) {
	s := NewSuggester(0.5)
	candidates := []string{"Petrova A.", "Petrov B.", "Petrov A.", "Sidorov C."}

	got := s.Suggest("petrov", candidates, 0)
	require.GreaterOrEqual(t, len(got), 3)
	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		assert.True(t, prev.Score > cur.Score || (prev.Score == cur.Score && prev.Candidate < cur.Candidate),
			"unexpected order %v before %v", prev, cur)
	}
	assert.Equal(t, "Petrov A.", got[0].Candidate, "ties are broken by name")

	limited := s.Suggest("petrov", candidates, 2)
	assert.Len(t, limited, 2)
	assert.Equal(t, Names(got[:2]), Names(limited))
}

func TestSuggest_Duplicates(t *testing.T) {
	s := NewSuggester(0.6)
	got := s.Suggest("ivanov", []string{"Ivanov", "Ivanov"}, 5)
	assert.Len(t, got, 1)
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		candidate string
		min       float64
		max       float64
	}{
		{name: "identical", query: "HP LaserJet", candidate: "HP LaserJet", min: 1, max: 1},
		{name: "case and spacing", query: "  hp   laserjet ", candidate: "HP LaserJet", min: 1, max: 1},
		{name: "token order", query: "Ivan Ivanov", candidate: "Ivanov Ivan", min: 1, max: 1},
		{name: "prefix typing", query: "Ivan", candidate: "Ivanov I.I.", min: 1, max: 1},
		{name: "cyrillic yo", query: "Семёнов", candidate: "Семенов С.С.", min: 1, max: 1},
		{name: "unrelated", query: "Ivanoff", candidate: "Smirnov S.S.", min: 0, max: 0.59},
		{name: "empty", query: "", candidate: "Ivanov", min: 0, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.query, tt.candidate)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}
