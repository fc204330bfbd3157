// Package ledger implements the record-level operations on top of the
// store: manual entry and correction of transactions, mass cleanup,
// automatic categorization, monthly materialization of recurring templates,
// and maintenance of templates, scenarios and categories.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fjacquet/cashflow/internal/categorizer"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/store"
)

// Repository is the slice of the record store the ledger works with.
type Repository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	ListTransactions(ctx context.Context, f store.TransactionFilter) ([]models.Transaction, error)
	CountTransactions(ctx context.Context, f store.TransactionFilter) (int64, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	DeleteTransactions(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteByFilter(ctx context.Context, f store.BatchDeleteFilter) (int64, error)
	TransactionsForCategorization(ctx context.Context, f store.CategorizationFilter) ([]models.Transaction, error)
	InsertTransactions(ctx context.Context, txs []models.Transaction) (int64, error)

	ListTemplates(ctx context.Context, activeOnly bool) ([]models.RecurringTemplate, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*models.RecurringTemplate, error)
	CreateTemplate(ctx context.Context, t *models.RecurringTemplate) error
	SaveTemplate(ctx context.Context, t *models.RecurringTemplate) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	ListScenarios(ctx context.Context) ([]models.Scenario, error)
	GetScenario(ctx context.Context, id uint) (*models.Scenario, error)
	CreateScenario(ctx context.Context, sc *models.Scenario) error
	DeleteScenario(ctx context.Context, id uint) error
	AddScenarioItem(ctx context.Context, scenarioID uint, item *models.ScenarioItem) error
	DeleteScenarioItem(ctx context.Context, itemID uint) error

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CategoryByName(ctx context.Context, name string) (*models.Category, error)
	SeedCategories(ctx context.Context, cats []models.Category) (int64, error)
}

// Service exposes the ledger operations.
type Service struct {
	repo      Repository
	predictor categorizer.Predictor
	history   categorizer.HistoryLoader
	logger    logging.Logger
	// Now is the clock used for defaults; tests replace it.
	Now func() time.Time
}

// NewService builds a Service. predictor and history may be nil, in which
// case AutoCategorize leaves every record uncategorized.
func NewService(repo Repository, predictor categorizer.Predictor, history categorizer.HistoryLoader, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{
		repo:      repo,
		predictor: predictor,
		history:   history,
		logger:    logger,
		Now:       time.Now,
	}
}
