package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fjacquet/cashflow/internal/models"
)

// ListTemplates returns recurring templates, optionally only active ones.
func (s *Store) ListTemplates(ctx context.Context, activeOnly bool) ([]models.RecurringTemplate, error) {
	q := s.conn(ctx).Preload("Category")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var templates []models.RecurringTemplate
	if err := q.Order("day_of_month").Order("description").Order("created_at").Order("id").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("failed to list recurring templates: %w", err)
	}
	return templates, nil
}

// GetTemplate loads one template.
func (s *Store) GetTemplate(ctx context.Context, id uuid.UUID) (*models.RecurringTemplate, error) {
	var t models.RecurringTemplate
	if err := s.conn(ctx).Preload("Category").First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "recurring template", id)
	}
	return &t, nil
}

// CreateTemplate inserts a template.
func (s *Store) CreateTemplate(ctx context.Context, t *models.RecurringTemplate) error {
	if err := s.conn(ctx).Omit("Category").Create(t).Error; err != nil {
		return fmt.Errorf("failed to create recurring template: %w", err)
	}
	return nil
}

// SaveTemplate writes every column of an existing template.
func (s *Store) SaveTemplate(ctx context.Context, t *models.RecurringTemplate) error {
	if err := s.conn(ctx).Omit("Category").Save(t).Error; err != nil {
		return fmt.Errorf("failed to save recurring template %s: %w", t.ID, err)
	}
	return nil
}

// DeleteTemplate removes a template. Records it already materialized stay.
func (s *Store) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Delete(&models.RecurringTemplate{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete recurring template %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(errNoRows, "recurring template", id)
	}
	return nil
}
