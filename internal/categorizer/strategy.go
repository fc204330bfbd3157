package categorizer

import (
	"context"

	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/models"
)

// Input is what a strategy sees of the record being categorized.
type Input struct {
	Description string
	Amount      decimal.Decimal
	History     []models.HistoryEntry
}

// CategorizationStrategy is one way of naming a category for a record.
type CategorizationStrategy interface {
	// Categorize returns the category name and true when the strategy is
	// confident. An error means the strategy failed, not that it abstained.
	Categorize(ctx context.Context, in Input) (string, bool, error)

	// Name identifies the strategy in logs.
	Name() string
}
