package ledger

import (
	"context"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
)

// ListCategories returns the structured categories by name.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []models.Category{}
	}
	return cats, nil
}

// SeedCategories inserts the default categories that do not exist yet and
// returns how many were added.
func (s *Service) SeedCategories(ctx context.Context) (int64, error) {
	n, err := s.repo.SeedCategories(ctx, models.DefaultCategories())
	if err != nil {
		return 0, err
	}
	s.logger.Info("Categories seeded", logging.F(logging.FieldCount, n))
	return n, nil
}
