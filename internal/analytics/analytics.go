// Package analytics aggregates stored transactions for the dashboard.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/store"
)

// Source loads transactions by reference month.
type Source interface {
	TransactionsInRange(ctx context.Context, f store.RangeFilter) ([]models.Transaction, error)
}

// Service answers aggregate queries. Now is the clock.
type Service struct {
	source Source
	logger logging.Logger
	Now    func() time.Time
}

// NewService returns a Service over source.
func NewService(source Source, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{source: source, logger: logger, Now: time.Now}
}

// MonthlyTotals is one month of Summary.
type MonthlyTotals struct {
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Summary is the yearly income/expense overview.
type Summary struct {
	Year         int             `json:"year"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
	MonthlyData  []MonthlyTotals `json:"monthly_data"`
}

// Summary sums INCOME and EXPENSE records per reference month of year.
// Months without records are reported as zero.
func (s *Service) Summary(ctx context.Context, year int) (*Summary, error) {
	from, to := dateutils.YearRange(year)
	txs, err := s.source.TransactionsInRange(ctx, store.RangeFilter{
		From:  from,
		To:    to,
		Types: []models.TransactionType{models.TypeIncome, models.TypeExpense},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load summary for %d: %w", year, err)
	}

	out := &Summary{
		Year:         year,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		MonthlyData:  make([]MonthlyTotals, 12),
	}
	for i := range out.MonthlyData {
		out.MonthlyData[i] = MonthlyTotals{Month: i + 1, Income: decimal.Zero, Expense: decimal.Zero}
	}
	for _, tx := range txs {
		m := &out.MonthlyData[int(tx.ReferenceDate.Month())-1]
		switch tx.Type {
		case models.TypeIncome:
			m.Income = m.Income.Add(tx.Amount)
			out.TotalIncome = out.TotalIncome.Add(tx.Amount)
		case models.TypeExpense:
			m.Expense = m.Expense.Add(tx.Amount)
			out.TotalExpense = out.TotalExpense.Add(tx.Amount)
		}
	}
	out.Balance = out.TotalIncome.Add(out.TotalExpense)
	return out, nil
}

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Name  string                 `json:"name"`
	Type  models.TransactionType `json:"type"`
	Value decimal.Decimal        `json:"value"`
}

// Breakdown splits a year, or one month of it, by source and category.
type Breakdown struct {
	BySource   map[string]decimal.Decimal `json:"by_source"`
	ByCategory []CategoryTotal            `json:"by_category"`
}

// Breakdown sums by source type over every record, and by resolved
// category name and type over non-transfer records. Categories are ordered
// by ascending total, so the largest expenses come first.
func (s *Service) Breakdown(ctx context.Context, year int, month *int) (*Breakdown, error) {
	from, to := dateutils.YearRange(year)
	if month != nil {
		if *month < 1 || *month > 12 {
			return nil, fmt.Errorf("invalid month %d", *month)
		}
		from, to = dateutils.MonthRange(year, time.Month(*month))
	}
	txs, err := s.source.TransactionsInRange(ctx, store.RangeFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to load breakdown: %w", err)
	}

	type catKey struct {
		name string
		typ  models.TransactionType
	}
	out := &Breakdown{BySource: make(map[string]decimal.Decimal)}
	byCat := make(map[catKey]decimal.Decimal)
	var order []catKey
	for _, tx := range txs {
		out.BySource[tx.SourceType] = out.BySource[tx.SourceType].Add(tx.Amount)
		if tx.Type == models.TypeTransfer {
			continue
		}
		key := catKey{name: tx.CategoryName(), typ: tx.Type}
		if _, ok := byCat[key]; !ok {
			order = append(order, key)
			byCat[key] = decimal.Zero
		}
		byCat[key] = byCat[key].Add(tx.Amount)
	}

	out.ByCategory = make([]CategoryTotal, 0, len(order))
	for _, key := range order {
		out.ByCategory = append(out.ByCategory, CategoryTotal{Name: key.name, Type: key.typ, Value: byCat[key]})
	}
	sort.SliceStable(out.ByCategory, func(i, j int) bool {
		return out.ByCategory[i].Value.LessThan(out.ByCategory[j].Value)
	})
	return out, nil
}

// MonthTotal is a labeled monthly amount.
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Spending is the result of AverageSpending.
type Spending struct {
	Average decimal.Decimal `json:"average"`
	Median  decimal.Decimal `json:"median"`
	History []MonthTotal    `json:"history"`
	Count   int             `json:"count"`
}

// AverageSpending reports the mean and median monthly expense of one source
// over the months complete before the current one. Only months with
// records count.
func (s *Service) AverageSpending(ctx context.Context, source string, months int) (*Spending, error) {
	if source == "" {
		source = models.SourceCard
	}
	if months <= 0 {
		months = 12
	}
	to := dateutils.StartOfMonth(s.Now())
	from := dateutils.AddMonths(to, -months)

	txs, err := s.source.TransactionsInRange(ctx, store.RangeFilter{
		From:        from,
		To:          to,
		Types:       []models.TransactionType{models.TypeExpense},
		SourceTypes: []string{source},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load spending history: %w", err)
	}

	perMonth := make(map[int]decimal.Decimal)
	for _, tx := range txs {
		idx := dateutils.MonthIndex(tx.ReferenceDate)
		perMonth[idx] = perMonth[idx].Add(tx.Amount)
	}

	out := &Spending{Average: decimal.Zero, Median: decimal.Zero, History: []MonthTotal{}}
	if len(perMonth) == 0 {
		return out, nil
	}

	keys := make([]int, 0, len(perMonth))
	for k := range perMonth {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	totals := make([]decimal.Decimal, 0, len(keys))
	sum := decimal.Zero
	for _, k := range keys {
		total := perMonth[k].Abs()
		totals = append(totals, total)
		sum = sum.Add(total)
		out.History = append(out.History, MonthTotal{
			Month: dateutils.FormatMonthLabel(dateutils.FromMonthIndex(k)),
			Total: total,
		})
	}
	out.Count = len(totals)
	out.Average = sum.Div(decimal.NewFromInt(int64(out.Count))).Round(2)
	out.Median = median(totals).Round(2)
	return out, nil
}

func median(values []decimal.Decimal) decimal.Decimal {
	sorted := append([]decimal.Decimal(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}
