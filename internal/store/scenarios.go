package store

import (
	"context"
	"fmt"

	"fjacquet/cashflow/internal/models"
)

// ListScenarios returns every scenario with its items.
func (s *Store) ListScenarios(ctx context.Context) ([]models.Scenario, error) {
	var scenarios []models.Scenario
	if err := s.conn(ctx).Preload("Items").Order("id").Find(&scenarios).Error; err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	return scenarios, nil
}

// GetScenario loads one scenario with its items.
func (s *Store) GetScenario(ctx context.Context, id uint) (*models.Scenario, error) {
	var sc models.Scenario
	if err := s.conn(ctx).Preload("Items").First(&sc, id).Error; err != nil {
		return nil, notFound(err, "scenario", id)
	}
	return &sc, nil
}

// CreateScenario inserts a scenario and any items it carries.
func (s *Store) CreateScenario(ctx context.Context, sc *models.Scenario) error {
	if err := s.conn(ctx).Create(sc).Error; err != nil {
		return fmt.Errorf("failed to create scenario: %w", err)
	}
	return nil
}

// DeleteScenario removes a scenario and its items.
func (s *Store) DeleteScenario(ctx context.Context, id uint) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.conn(ctx).Where("scenario_id = ?", id).Delete(&models.ScenarioItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of scenario %d: %w", id, err)
		}
		res := s.conn(ctx).Delete(&models.Scenario{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete scenario %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(errNoRows, "scenario", id)
		}
		return nil
	})
}

// AddScenarioItem attaches an item to an existing scenario.
func (s *Store) AddScenarioItem(ctx context.Context, scenarioID uint, item *models.ScenarioItem) error {
	return s.RunInTx(ctx, func(ctx context.Context) error {
		var count int64
		if err := s.conn(ctx).Model(&models.Scenario{}).Where("id = ?", scenarioID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up scenario %d: %w", scenarioID, err)
		}
		if count == 0 {
			return notFound(errNoRows, "scenario", scenarioID)
		}
		item.ScenarioID = scenarioID
		if err := s.conn(ctx).Create(item).Error; err != nil {
			return fmt.Errorf("failed to add item to scenario %d: %w", scenarioID, err)
		}
		return nil
	})
}

// DeleteScenarioItem removes one item.
func (s *Store) DeleteScenarioItem(ctx context.Context, itemID uint) error {
	res := s.conn(ctx).Delete(&models.ScenarioItem{}, itemID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete scenario item %d: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(errNoRows, "scenario item", itemID)
	}
	return nil
}
