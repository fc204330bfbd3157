package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	m := NewLevenshteinMatcher()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Netflix", "Netflix", 1},
		{"case and accents", "PAGAMENTO SALÁRIO", "pagamento salario", 1},
		{"both empty", "", "", 1},
		{"one empty", "abc", "", 0},
		{"one edit of four", "uber", "uberx", 0.8},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Score(tt.a, tt.b), 1e-9)
		})
	}
}

func TestTopKSimilar(t *testing.T) {
	m := NewLevenshteinMatcher()
	candidates := []string{"Padaria Pão Quente", "Netflix.com", "NETFLIX COM", "Posto Shell"}

	got := m.TopKSimilar("netflix com", candidates, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "NETFLIX COM", got[0].Candidate)
	assert.Equal(t, 2, got[0].Index)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.Equal(t, "Netflix.com", got[1].Candidate)

	all := m.TopKSimilar("x", candidates, 0)
	assert.Len(t, all, len(candidates))
	assert.Empty(t, m.TopKSimilar("x", nil, 3))
}
