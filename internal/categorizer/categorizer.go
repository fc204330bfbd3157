// Package categorizer predicts a category name for a transaction. Failures
// of any kind resolve to models.CategoryUncategorized.
package categorizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
)

// DefaultTimeout bounds one prediction.
const DefaultTimeout = 10 * time.Second

// Predictor names a category for a description and signed amount. History
// supplies verified past examples and may be nil. Predict never fails.
type Predictor interface {
	Predict(ctx context.Context, description string, amount decimal.Decimal, history []models.HistoryEntry) string
}

// HistoryLoader pulls verified, categorized past records.
type HistoryLoader func(ctx context.Context) ([]models.HistoryEntry, error)

// Categorizer runs its strategies in order and returns the first confident
// answer.
type Categorizer struct {
	strategies []CategorizationStrategy
	timeout    time.Duration
	logger     logging.Logger
}

// New returns a Categorizer. A zero timeout means DefaultTimeout.
func New(logger logging.Logger, timeout time.Duration, strategies ...CategorizationStrategy) *Categorizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Categorizer{strategies: strategies, timeout: timeout, logger: logger}
}

// Predict implements Predictor.
func (c *Categorizer) Predict(ctx context.Context, description string, amount decimal.Decimal, history []models.HistoryEntry) string {
	if strings.TrimSpace(description) == "" {
		return models.CategoryUncategorized
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	in := Input{Description: description, Amount: amount, History: history}
	for _, strategy := range c.strategies {
		category, ok, err := c.run(ctx, strategy, in)
		if err != nil {
			c.logger.WithError(&parsererror.CategorizationError{
				Description: description,
				Strategy:    strategy.Name(),
				Err:         err,
			}).Warn("Categorization strategy failed")
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if ok && category != "" {
			c.logger.Debug("Transaction categorized",
				logging.F(logging.FieldStrategy, strategy.Name()),
				logging.F(logging.FieldCategory, category))
			return category
		}
	}
	return models.CategoryUncategorized
}

// run shields the caller from panics inside a strategy.
func (c *Categorizer) run(ctx context.Context, s CategorizationStrategy, in Input) (category string, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			category, ok, err = "", false, fmt.Errorf("strategy %s panicked: %v", s.Name(), r)
		}
	}()
	return s.Categorize(ctx, in)
}
