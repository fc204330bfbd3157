package categorizer

import (
	"context"

	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/similarity"
)

// Defaults for HistoryStrategy.
const (
	DefaultHistoryThreshold = 0.85
	DefaultAmountTolerance  = 0.15
)

// HistoryStrategy reuses the category of a past record with a similar
// description, the same sign and a comparable magnitude. The magnitude
// check is what tells a small one-off transfer apart from a salary
// deposit with the same payer.
type HistoryStrategy struct {
	matcher   similarity.Matcher
	threshold float64
	tolerance decimal.Decimal
	logger    logging.Logger
}

// NewHistoryStrategy returns a HistoryStrategy. Zero threshold or tolerance
// fall back to the defaults.
func NewHistoryStrategy(matcher similarity.Matcher, threshold, tolerance float64, logger logging.Logger) *HistoryStrategy {
	if matcher == nil {
		matcher = similarity.NewLevenshteinMatcher()
	}
	if threshold <= 0 {
		threshold = DefaultHistoryThreshold
	}
	if tolerance <= 0 {
		tolerance = DefaultAmountTolerance
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &HistoryStrategy{
		matcher:   matcher,
		threshold: threshold,
		tolerance: decimal.NewFromFloat(tolerance),
		logger:    logger,
	}
}

func (s *HistoryStrategy) Name() string {
	return "History"
}

func (s *HistoryStrategy) Categorize(_ context.Context, in Input) (string, bool, error) {
	if len(in.History) == 0 {
		return "", false, nil
	}

	descriptions := make([]string, len(in.History))
	for i, h := range in.History {
		descriptions[i] = h.Description
	}

	for _, m := range s.matcher.TopKSimilar(in.Description, descriptions, 0) {
		if m.Score < s.threshold {
			break
		}
		past := in.History[m.Index]
		if past.Category == "" || past.Category == models.CategoryUncategorized {
			continue
		}
		if !s.comparable(in.Amount, past.Amount) {
			continue
		}
		s.logger.Debug("History match found",
			logging.F(logging.FieldCategory, past.Category),
			logging.F("score", m.Score))
		return past.Category, true, nil
	}
	return "", false, nil
}

// comparable reports whether amount has the sign of past and a magnitude
// within the tolerance band around it.
func (s *HistoryStrategy) comparable(amount, past decimal.Decimal) bool {
	if amount.Sign() != past.Sign() {
		return false
	}
	ref := past.Abs()
	band := ref.Mul(s.tolerance)
	diff := amount.Abs().Sub(ref).Abs()
	return diff.LessThanOrEqual(band)
}
