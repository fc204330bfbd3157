package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/store"
)

// Health statuses.
const (
	StatusComfort  = "COMFORT"
	StatusSurvival = "SURVIVAL"
)

// Health compares account liquidity with card liability.
type Health struct {
	Liquidity decimal.Decimal `json:"liquidity"`
	Liability decimal.Decimal `json:"liability"`
	Ratio     float64         `json:"ratio"`
	Status    string          `json:"status"`
}

// ComputeHealth applies the rule: COMFORT when liquidity covers the
// absolute liability. Ratio is liquidity / |liability| in percent, one
// decimal; without liability it is 100 for non-negative liquidity and 0
// otherwise.
func ComputeHealth(liquidity, liability decimal.Decimal) Health {
	owed := liability.Abs()
	h := Health{Liquidity: liquidity, Liability: liability, Status: StatusSurvival}
	if liquidity.GreaterThanOrEqual(owed) {
		h.Status = StatusComfort
	}
	switch {
	case owed.IsZero() && !liquidity.IsNegative():
		h.Ratio = 100
	case owed.IsZero():
		h.Ratio = 0
	default:
		h.Ratio = liquidity.Div(owed).Mul(decimal.NewFromInt(100)).Round(1).InexactFloat64()
	}
	return h
}

// HealthRatio sums XP_ACCOUNT and XP_CARD records, optionally within one
// reference year, and applies ComputeHealth.
func (s *Service) HealthRatio(ctx context.Context, year *int) (*Health, error) {
	f := store.RangeFilter{SourceTypes: []string{models.SourceAccount, models.SourceCard}}
	if year != nil {
		f.From, f.To = dateutils.YearRange(*year)
	}
	txs, err := s.source.TransactionsInRange(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}

	liquidity, liability := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.SourceType {
		case models.SourceAccount:
			liquidity = liquidity.Add(tx.Amount)
		case models.SourceCard:
			liability = liability.Add(tx.Amount)
		}
	}
	h := ComputeHealth(liquidity, liability)
	return &h, nil
}
