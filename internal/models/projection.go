package models

import "github.com/shopspring/decimal"

// ProjectionLine is one labeled row of a projection. Values has one entry
// per projection month, zero where the row is inactive.
type ProjectionLine struct {
	Name   string            `json:"name"`
	Type   TransactionType   `json:"type"`
	Values []decimal.Decimal `json:"values"`
	Source string            `json:"source"`
}

// Projection is the forward ledger: month headers plus merged rows.
type Projection struct {
	Months []string         `json:"month_headers"`
	Items  []ProjectionLine `json:"items"`
}

// Totals sums each column across all rows.
func (p Projection) Totals() []decimal.Decimal {
	totals := make([]decimal.Decimal, len(p.Months))
	for i := range totals {
		totals[i] = decimal.Zero
	}
	for _, item := range p.Items {
		for i, v := range item.Values {
			if i < len(totals) {
				totals[i] = totals[i].Add(v)
			}
		}
	}
	return totals
}
