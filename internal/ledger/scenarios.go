package ledger

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
)

// NewScenario is a what-if overlay to create, optionally with items.
type NewScenario struct {
	Name        string
	Description string
	Items       []models.ScenarioItem
}

func (s *Service) ListScenarios(ctx context.Context) ([]models.Scenario, error) {
	scenarios, err := s.repo.ListScenarios(ctx)
	if err != nil {
		return nil, err
	}
	if scenarios == nil {
		scenarios = []models.Scenario{}
	}
	return scenarios, nil
}

func (s *Service) GetScenario(ctx context.Context, id uint) (*models.Scenario, error) {
	return s.repo.GetScenario(ctx, id)
}

// CreateScenario stores the scenario and its items in one transaction.
func (s *Service) CreateScenario(ctx context.Context, in NewScenario) (*models.Scenario, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &parsererror.ValidationError{Field: "name", Reason: "is required"}
	}
	if len([]rune(name)) > 100 {
		return nil, &parsererror.ValidationError{Field: "name", Reason: "must be at most 100 characters"}
	}

	sc := &models.Scenario{Name: name, Description: in.Description, Items: make([]models.ScenarioItem, 0, len(in.Items))}
	for i, item := range in.Items {
		if err := prepareItem(&item); err != nil {
			return nil, &parsererror.ValidationError{Field: fmt.Sprintf("items[%d]", i), Reason: err.Error()}
		}
		sc.Items = append(sc.Items, item)
	}

	if err := s.repo.CreateScenario(ctx, sc); err != nil {
		return nil, err
	}
	s.logger.Info("Scenario created",
		logging.F(logging.FieldScenarioID, sc.ID),
		logging.F(logging.FieldCount, len(sc.Items)))
	return sc, nil
}

// AddScenarioItem attaches item to the scenario and returns the scenario as
// it now stands.
func (s *Service) AddScenarioItem(ctx context.Context, scenarioID uint, item models.ScenarioItem) (*models.Scenario, error) {
	if err := prepareItem(&item); err != nil {
		return nil, &parsererror.ValidationError{Field: "item", Reason: err.Error()}
	}
	if err := s.repo.AddScenarioItem(ctx, scenarioID, &item); err != nil {
		return nil, err
	}
	return s.repo.GetScenario(ctx, scenarioID)
}

// DeleteScenario removes the scenario with all its items.
func (s *Service) DeleteScenario(ctx context.Context, id uint) error {
	if err := s.repo.DeleteScenario(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Scenario deleted", logging.F(logging.FieldScenarioID, id))
	return nil
}

// DeleteScenarioItem removes one item of the scenario. An item that belongs
// to another scenario is reported as not found.
func (s *Service) DeleteScenarioItem(ctx context.Context, scenarioID, itemID uint) error {
	sc, err := s.repo.GetScenario(ctx, scenarioID)
	if err != nil {
		return err
	}
	for _, item := range sc.Items {
		if item.ID == itemID {
			return s.repo.DeleteScenarioItem(ctx, itemID)
		}
	}
	return parsererror.NotFound("scenario item", itemID)
}

func prepareItem(item *models.ScenarioItem) error {
	item.ID = 0
	item.ScenarioID = 0
	item.Description = strings.TrimSpace(item.Description)
	item.StartDate = dateutils.Truncate(item.StartDate)
	item.ApplyDefaults()
	return item.Validate()
}
