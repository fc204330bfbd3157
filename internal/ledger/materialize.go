package ledger

import (
	"context"
	"fmt"
	"time"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/dedup"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
)

// Materialize turns every active template covering (year, month) into a
// RECURRING transaction dated on the template's day, clamped to the month
// end. Records already materialized for that month are skipped by their
// identity key, so running twice inserts nothing new. It returns how many
// records were inserted.
func (s *Service) Materialize(ctx context.Context, year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, &parsererror.ValidationError{Field: "month", Reason: fmt.Sprintf("%d is not between 1 and 12", month)}
	}
	if year < 1 {
		return 0, &parsererror.ValidationError{Field: "year", Reason: fmt.Sprintf("%d is not a valid year", year)}
	}
	log := s.logger.WithFields(logging.F(logging.FieldPeriod, fmt.Sprintf("%04d-%02d", year, month)))

	templates, err := s.repo.ListTemplates(ctx, true)
	if err != nil {
		return 0, err
	}

	batch := make([]models.Transaction, 0, len(templates))
	for _, tmpl := range templates {
		if !tmpl.ActiveIn(year, time.Month(month)) {
			continue
		}
		date := dateutils.ClampDay(year, time.Month(month), tmpl.DayOfMonth)
		tx := models.Transaction{
			Date:           date,
			ReferenceDate:  date,
			Description:    tmpl.Description,
			Amount:         tmpl.Amount,
			Type:           tmpl.Type,
			SourceType:     models.SourceRecurring,
			CategoryID:     tmpl.CategoryID,
			CategoryLegacy: tmpl.CategoryLegacy,
			IsRecurring:    true,
		}
		if tx.CategoryLegacy == "" {
			tx.CategoryLegacy = models.CategoryUncategorized
		}
		if err := tx.Validate(); err != nil {
			log.WithError(err).Warn("Skipping invalid template",
				logging.F(logging.FieldTemplateID, tmpl.ID.String()))
			continue
		}
		batch = append(batch, tx)
	}
	if len(batch) == 0 {
		log.Info("No active recurring templates for period")
		return 0, nil
	}

	dedup.AssignKeys(batch)

	var inserted int64
	err = s.repo.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.repo.InsertTransactions(ctx, batch)
		inserted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to materialize recurring templates: %w", err)
	}

	log.Info("Recurring templates materialized",
		logging.F(logging.FieldCount, inserted),
		logging.F(logging.FieldSkipped, int64(len(batch))-inserted))
	return int(inserted), nil
}

// MaterializeCurrent materializes the month containing Now.
func (s *Service) MaterializeCurrent(ctx context.Context) (int, error) {
	now := s.Now().UTC()
	return s.Materialize(ctx, now.Year(), int(now.Month()))
}
