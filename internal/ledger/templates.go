package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
)

// NewTemplate describes a recurring obligation or income to create.
// IsActive defaults to true, DayOfMonth to 1 and SourceType to XP_ACCOUNT.
type NewTemplate struct {
	Description string
	Amount      decimal.Decimal
	Type        models.TransactionType
	Category    string
	CategoryID  *uint
	IsActive    *bool
	DayOfMonth  int
	StartDate   time.Time
	EndDate     *time.Time
	SourceType  string
}

// TemplatePatch carries the template fields to change. ClearEndDate makes
// the template open-ended again.
type TemplatePatch struct {
	Description  *string
	Amount       *decimal.Decimal
	Type         *models.TransactionType
	Category     *string
	CategoryID   *uint
	IsActive     *bool
	DayOfMonth   *int
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	SourceType   *string
}

// ListTemplates returns every template, active or not.
func (s *Service) ListTemplates(ctx context.Context) ([]models.RecurringTemplate, error) {
	templates, err := s.repo.ListTemplates(ctx, false)
	if err != nil {
		return nil, err
	}
	if templates == nil {
		templates = []models.RecurringTemplate{}
	}
	return templates, nil
}

// GetTemplate loads one template.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID) (*models.RecurringTemplate, error) {
	return s.repo.GetTemplate(ctx, id)
}

// CreateTemplate validates and stores a template.
func (s *Service) CreateTemplate(ctx context.Context, in NewTemplate) (*models.RecurringTemplate, error) {
	t := &models.RecurringTemplate{
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Type:        in.Type,
		IsActive:    true,
		DayOfMonth:  in.DayOfMonth,
		StartDate:   dateutils.Truncate(in.StartDate),
		SourceType:  in.SourceType,
	}
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	if in.EndDate != nil {
		end := dateutils.Truncate(*in.EndDate)
		t.EndDate = &end
	}
	if err := s.templateCategory(ctx, t, in.CategoryID, strPtr(in.Category)); err != nil {
		return nil, err
	}

	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return nil, &parsererror.ValidationError{Field: "recurring template", Reason: err.Error()}
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("Recurring template created", logging.F(logging.FieldTemplateID, t.ID.String()))
	return t, nil
}

// UpdateTemplate applies patch; the amount sign then follows the resulting
// type.
func (s *Service) UpdateTemplate(ctx context.Context, id uuid.UUID, patch TemplatePatch) (*models.RecurringTemplate, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Type != nil {
		t.Type = *patch.Type
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.IsActive != nil {
		t.IsActive = *patch.IsActive
	}
	if patch.DayOfMonth != nil {
		t.DayOfMonth = *patch.DayOfMonth
	}
	if patch.StartDate != nil {
		t.StartDate = dateutils.Truncate(*patch.StartDate)
	}
	switch {
	case patch.ClearEndDate:
		t.EndDate = nil
	case patch.EndDate != nil:
		end := dateutils.Truncate(*patch.EndDate)
		t.EndDate = &end
	}
	if patch.SourceType != nil {
		t.SourceType = *patch.SourceType
	}
	if err := s.templateCategory(ctx, t, patch.CategoryID, patch.Category); err != nil {
		return nil, err
	}

	t.ApplyDefaults()
	if err := t.Validate(); err != nil {
		return nil, &parsererror.ValidationError{Field: "recurring template", Reason: err.Error()}
	}
	if err := s.repo.SaveTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTemplate removes a template. Transactions it already produced stay.
func (s *Service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Recurring template deleted", logging.F(logging.FieldTemplateID, id.String()))
	return nil
}

func (s *Service) templateCategory(ctx context.Context, t *models.RecurringTemplate, id *uint, name *string) error {
	switch {
	case id != nil:
		cat, err := s.repo.GetCategory(ctx, *id)
		if err != nil {
			return err
		}
		t.CategoryID, t.Category, t.CategoryLegacy = &cat.ID, cat, cat.Name
	case name != nil:
		n := strings.TrimSpace(*name)
		t.CategoryID, t.Category, t.CategoryLegacy = nil, nil, n
		if n == "" {
			return nil
		}
		cat, err := s.repo.CategoryByName(ctx, n)
		if err != nil {
			return err
		}
		if cat != nil {
			t.CategoryID, t.Category = &cat.ID, cat
		}
	}
	return nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
