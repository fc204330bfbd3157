package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
)

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := s.conn(ctx).Order("name").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return cats, nil
}

// GetCategory loads one category.
func (s *Store) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var cat models.Category
	if err := s.conn(ctx).First(&cat, id).Error; err != nil {
		return nil, notFound(err, "category", id)
	}
	return &cat, nil
}

// CategoryByName returns the category with exactly name, or nil.
func (s *Store) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var cats []models.Category
	if err := s.conn(ctx).Where("name = ?", name).Limit(1).Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("failed to look up category %s: %w", name, err)
	}
	if len(cats) == 0 {
		return nil, nil
	}
	return &cats[0], nil
}

// SeedCategories inserts the given categories, skipping names that exist.
func (s *Store) SeedCategories(ctx context.Context, cats []models.Category) (int64, error) {
	if len(cats) == 0 {
		return 0, nil
	}
	res := s.conn(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&cats)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to seed categories: %w", res.Error)
	}
	s.logger.Info("Seeded categories",
		logging.F(logging.FieldCount, res.RowsAffected),
		logging.F(logging.FieldSkipped, int64(len(cats))-res.RowsAffected))
	return res.RowsAffected, nil
}
