package categorizer

import (
	"context"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/store"
	"fjacquet/cashflow/internal/textutils"
)

// KeywordStrategy matches descriptions against configured keyword lists.
// The first rule with a keyword contained in the description wins.
type KeywordStrategy struct {
	rules  []store.KeywordRule
	logger logging.Logger
}

// NewKeywordStrategy returns a KeywordStrategy over rules.
func NewKeywordStrategy(rules []store.KeywordRule, logger logging.Logger) *KeywordStrategy {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &KeywordStrategy{rules: rules, logger: logger}
}

func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

// Categorize compares case- and accent-insensitively.
func (s *KeywordStrategy) Categorize(_ context.Context, in Input) (string, bool, error) {
	for _, rule := range s.rules {
		for _, kw := range rule.Keywords {
			if textutils.ContainsFold(in.Description, kw) {
				s.logger.Debug("Keyword match found",
					logging.F(logging.FieldCategory, rule.Category),
					logging.F("keyword", kw))
				return rule.Category, true, nil
			}
		}
	}
	return "", false, nil
}
