// Package similarity scores how alike two transaction descriptions are.
package similarity

import (
	"sort"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"fjacquet/cashflow/internal/textutils"
)

// Match is a candidate with its similarity score in [0, 1].
type Match struct {
	Candidate string
	Index     int
	Score     float64
}

// Matcher finds the candidates closest to a query.
type Matcher interface {
	Score(a, b string) float64
	TopKSimilar(query string, candidates []string, k int) []Match
}

// LevenshteinMatcher scores by normalized edit distance on folded strings.
type LevenshteinMatcher struct{}

// NewLevenshteinMatcher returns a LevenshteinMatcher.
func NewLevenshteinMatcher() *LevenshteinMatcher {
	return &LevenshteinMatcher{}
}

// Score is 1 - distance / max(rune length) after case, accent and
// whitespace folding. Two empty strings score 1.
func (m *LevenshteinMatcher) Score(a, b string) float64 {
	a, b = textutils.Fold(a), textutils.Fold(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// TopKSimilar returns up to k candidates ordered by descending score. Equal
// scores keep candidate order. k <= 0 returns every candidate.
func (m *LevenshteinMatcher) TopKSimilar(query string, candidates []string, k int) []Match {
	matches := make([]Match, len(candidates))
	for i, c := range candidates {
		matches[i] = Match{Candidate: c, Index: i, Score: m.Score(query, c)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if k > 0 && k < len(matches) {
		matches = matches[:k]
	}
	return matches
}
