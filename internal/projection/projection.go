// Package projection builds the month-by-month forward ledger from recurring
// templates, open installment plans and an optional scenario overlay.
package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
)

// Horizon bounds and default, in months.
const (
	MinMonths     = 1
	MaxMonths     = 60
	DefaultMonths = 12
)

// InstallmentWindowDays is how many calendar days back real records are
// scanned for open installment plans. The cutoff day itself is included.
const InstallmentWindowDays = 90

// installmentCutoff returns midnight of the first day inside the window.
func installmentCutoff(now time.Time) time.Time {
	return dateutils.Truncate(now).AddDate(0, 0, -InstallmentWindowDays)
}

// Source reads what the engine projects from.
type Source interface {
	ListTemplates(ctx context.Context, activeOnly bool) ([]models.RecurringTemplate, error)
	InstallmentCandidates(ctx context.Context, since time.Time) ([]models.Transaction, error)
	GetScenario(ctx context.Context, id uint) (*models.Scenario, error)
}

// Engine computes projections. Now is the clock and defaults to time.Now.
type Engine struct {
	source Source
	logger logging.Logger
	Now    func() time.Time
}

// NewEngine returns an Engine reading from source.
func NewEngine(source Source, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Engine{source: source, logger: logger, Now: time.Now}
}

// ClampMonths keeps a requested horizon inside [MinMonths, MaxMonths].
func ClampMonths(months int) int {
	switch {
	case months < MinMonths:
		return MinMonths
	case months > MaxMonths:
		return MaxMonths
	}
	return months
}

// Axis returns the first-of-month dates of the months following now.
func Axis(now time.Time, months int) []time.Time {
	start := dateutils.AddMonths(dateutils.StartOfMonth(now), 1)
	axis := make([]time.Time, months)
	for i := range axis {
		axis[i] = dateutils.AddMonths(start, i)
	}
	return axis
}

// Project returns the forward ledger over months columns starting next
// month. A nil or unknown scenarioID adds no overlay rows.
func (e *Engine) Project(ctx context.Context, months int, scenarioID *uint) (*models.Projection, error) {
	months = ClampMonths(months)
	now := e.Now().UTC()
	axis := Axis(now, months)

	var (
		templates []models.RecurringTemplate
		plans     []models.Transaction
		scenario  *models.Scenario
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		templates, err = e.source.ListTemplates(gctx, true)
		return err
	})
	g.Go(func() error {
		var err error
		plans, err = e.source.InstallmentCandidates(gctx, installmentCutoff(now))
		return err
	})
	if scenarioID != nil {
		g.Go(func() error {
			sc, err := e.source.GetScenario(gctx, *scenarioID)
			if errors.Is(err, parsererror.ErrNotFound) {
				e.logger.Warn("Scenario not found, projecting without overlay",
					logging.F(logging.FieldScenarioID, *scenarioID))
				return nil
			}
			scenario = sc
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load projection sources: %w", err)
	}

	p := &models.Projection{Months: make([]string, months)}
	for i, d := range axis {
		p.Months[i] = dateutils.FormatMonthLabel(d)
	}
	p.Items = append(p.Items, templateLines(templates, axis)...)
	p.Items = append(p.Items, installmentLines(plans, axis)...)
	if scenario != nil {
		p.Items = append(p.Items, scenarioLines(*scenario, axis)...)
	}

	e.logger.Debug("Projection computed",
		logging.F(logging.FieldMonths, months),
		logging.F(logging.FieldCount, len(p.Items)))
	return p, nil
}

func zeros(n int) []decimal.Decimal {
	v := make([]decimal.Decimal, n)
	for i := range v {
		v[i] = decimal.Zero
	}
	return v
}

func templateLines(templates []models.RecurringTemplate, axis []time.Time) []models.ProjectionLine {
	lines := make([]models.ProjectionLine, 0, len(templates))
	for _, t := range templates {
		if !t.IsActive {
			continue
		}
		values := zeros(len(axis))
		for i, d := range axis {
			if t.ActiveIn(d.Year(), d.Month()) {
				values[i] = t.Amount
			}
		}
		lines = append(lines, models.ProjectionLine{
			Name:   t.Description,
			Type:   t.Type,
			Values: values,
			Source: t.SourceType,
		})
	}
	return lines
}

type planKey struct {
	description string
	total       int
}

// installmentLines projects the remaining charges of every unfinished plan.
// A plan is identified by its folded description and installment count; its
// state is the record with the latest date, later records winning ties.
func installmentLines(records []models.Transaction, axis []time.Time) []models.ProjectionLine {
	latest := make(map[planKey]models.Transaction)
	var order []planKey
	for _, tx := range records {
		if !tx.HasInstallmentPlan() {
			continue
		}
		key := planKey{
			description: strings.ToLower(strings.TrimSpace(tx.Description)),
			total:       *tx.InstallmentTotal,
		}
		cur, seen := latest[key]
		if !seen {
			order = append(order, key)
		}
		if !seen || !tx.Date.Before(cur.Date) {
			latest[key] = tx
		}
	}

	axisIndex := make(map[int]int, len(axis))
	for i, d := range axis {
		axisIndex[dateutils.MonthIndex(d)] = i
	}

	var lines []models.ProjectionLine
	for _, key := range order {
		tx := latest[key]
		current, total := *tx.InstallmentCurrent, *tx.InstallmentTotal
		if current >= total {
			continue
		}

		values := zeros(len(axis))
		nonZero := false
		next := dateutils.MonthIndex(tx.Date) + 1
		for k := 0; k < total-current; k++ {
			if i, ok := axisIndex[next+k]; ok {
				values[i] = tx.Amount
				nonZero = nonZero || !tx.Amount.IsZero()
			}
		}
		if !nonZero {
			continue
		}
		lines = append(lines, models.ProjectionLine{
			Name:   fmt.Sprintf("%s (%d/%d)", tx.Description, current+1, total),
			Type:   tx.Type,
			Values: values,
			Source: tx.SourceType,
		})
	}
	return lines
}

func scenarioLines(sc models.Scenario, axis []time.Time) []models.ProjectionLine {
	lines := make([]models.ProjectionLine, 0, len(sc.Items))
	for _, item := range sc.Items {
		start := dateutils.MonthIndex(item.StartDate)
		values := zeros(len(axis))
		for i, d := range axis {
			idx := dateutils.MonthIndex(d)
			if idx < start {
				continue
			}
			if item.IsRecurring || idx < start+item.Installments {
				values[i] = item.Amount
			}
		}
		lines = append(lines, models.ProjectionLine{
			Name:   fmt.Sprintf("[%s] %s", sc.Name, item.Description),
			Type:   item.Type,
			Values: values,
			Source: item.SourceType,
		})
	}
	return lines
}
