package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
)

// ReconciliationWindowDays is how far apart a manual entry and an imported
// record may be dated and still be flagged as the same event.
const ReconciliationWindowDays = 2

// Repository is the slice of the record store the engine needs.
type Repository interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	ExistingHashes(ctx context.Context, keys []string) (map[string]bool, error)
	InsertTransactions(ctx context.Context, txs []models.Transaction) (int64, error)
	FindManualMatch(ctx context.Context, amount decimal.Decimal, date time.Time, windowDays int) (*models.Transaction, error)
}

// Result is the outcome of committing one batch.
type Result struct {
	Committed  []models.Transaction
	Candidates []models.ReconciliationCandidate
}

// Engine commits import batches.
type Engine struct {
	repo   Repository
	logger logging.Logger
}

// NewEngine returns an Engine writing through repo.
func NewEngine(repo Repository, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Engine{repo: repo, logger: logger}
}

// Commit assigns identity keys, inserts the records not yet stored and
// reports manual entries that probably describe the same events. The batch
// commits atomically; records whose key already exists are dropped without
// error.
func (e *Engine) Commit(ctx context.Context, batch []models.Transaction) (*Result, error) {
	result := &Result{}
	if len(batch) == 0 {
		return result, nil
	}

	AssignKeys(batch)
	keys := make([]string, len(batch))
	for i, tx := range batch {
		keys[i] = *tx.UniqueHash
	}

	err := e.repo.RunInTx(ctx, func(ctx context.Context) error {
		existing, err := e.repo.ExistingHashes(ctx, keys)
		if err != nil {
			return err
		}

		fresh := make([]models.Transaction, 0, len(batch))
		for _, tx := range batch {
			if !existing[*tx.UniqueHash] {
				fresh = append(fresh, tx)
			}
		}
		if len(fresh) == 0 {
			return nil
		}

		inserted, err := e.repo.InsertTransactions(ctx, fresh)
		if err != nil {
			return err
		}
		if inserted != int64(len(fresh)) {
			e.logger.Warn("Insert count differs from new records",
				logging.F(logging.FieldCount, inserted),
				logging.F("expected", len(fresh)))
		}

		for _, tx := range fresh {
			match, err := e.repo.FindManualMatch(ctx, tx.Amount, tx.Date, ReconciliationWindowDays)
			if err != nil {
				return err
			}
			if match != nil {
				result.Candidates = append(result.Candidates, candidateFrom(*match, tx))
			}
		}
		result.Committed = fresh
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to commit import batch: %w", err)
	}

	e.logger.Info("Import batch committed",
		logging.F(logging.FieldCount, len(result.Committed)),
		logging.F(logging.FieldSkipped, len(batch)-len(result.Committed)),
		logging.F(logging.FieldCandidates, len(result.Candidates)))
	return result, nil
}

func candidateFrom(manual, imported models.Transaction) models.ReconciliationCandidate {
	return models.ReconciliationCandidate{
		ID:          manual.ID,
		Date:        manual.Date,
		Description: manual.Description,
		Amount:      manual.Amount,
		Type:        manual.Type,
		Category:    manual.CategoryName(),
		MatchedID:   imported.ID,
	}
}
