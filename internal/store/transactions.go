package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
)

// TransactionFilter narrows ListTransactions. Zero values mean "any".
type TransactionFilter struct {
	Month          int
	Year           int
	Category       string
	Search         string
	IsRecurring    *bool
	SourceType     string
	UnverifiedOnly bool
	Skip           int
	Limit          int
}

// BatchDeleteFilter selects records for a filter-driven delete. Verified
// records are never selected.
type BatchDeleteFilter struct {
	Month      int
	Year       int
	SourceType string
	CategoryID *uint
}

// CategorizationFilter selects records for automatic categorization.
// Verified records are never selected; Force also re-selects records that
// already carry a category.
type CategorizationFilter struct {
	Month int
	Year  int
	Limit int
	Force bool
}

// RangeFilter selects records whose reference month falls in [From, To).
type RangeFilter struct {
	From        time.Time
	To          time.Time
	Types       []models.TransactionType
	SourceTypes []string
}

// FileImported reports whether any record carries filename as provenance.
func (s *Store) FileImported(ctx context.Context, filename string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Transaction{}).
		Where(datatypes.JSONQuery("raw_data").Equals(filename, models.RawDataSourceFilename)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check imported file %s: %w", filename, err)
	}
	return count > 0, nil
}

// ExistingHashes returns the subset of keys already stored. Keys are looked
// up in chunks of ChunkSize; the union of the chunk results is returned.
func (s *Store) ExistingHashes(ctx context.Context, keys []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for _, part := range chunk(keys, s.chunkSize) {
		var found []string
		err := s.conn(ctx).Model(&models.Transaction{}).
			Where("unique_hash IN ?", part).
			Pluck("unique_hash", &found).Error
		if err != nil {
			return nil, fmt.Errorf("failed to look up existing hashes: %w", err)
		}
		for _, h := range found {
			existing[h] = true
		}
	}
	return existing, nil
}

// InsertTransactions bulk inserts records, skipping any whose unique hash is
// already present. It returns the number of rows written.
func (s *Store) InsertTransactions(ctx context.Context, txs []models.Transaction) (int64, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	res := s.conn(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "unique_hash"}}, DoNothing: true}).
		CreateInBatches(&txs, s.chunkSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// FindManualMatch returns a MANUAL record with exactly amount whose date is
// within windowDays of date, or nil.
func (s *Store) FindManualMatch(ctx context.Context, amount decimal.Decimal, date time.Time, windowDays int) (*models.Transaction, error) {
	window := time.Duration(windowDays) * 24 * time.Hour
	var matches []models.Transaction
	err := s.conn(ctx).Preload("Category").
		Where("source_type = ?", models.SourceManual).
		Where("amount = ?", amount).
		Where("date >= ? AND date <= ?", date.Add(-window), date.Add(window)).
		Order("date").
		Limit(1).
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search manual matches: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// CreateTransaction inserts one record.
func (s *Store) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.conn(ctx).Omit("Category").Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransaction loads one record with its category.
func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.conn(ctx).Preload("Category").First(&tx, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return &tx, nil
}

// SaveTransaction writes every column of an existing record.
func (s *Store) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := s.conn(ctx).Omit("Category").Save(tx).Error; err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", tx.ID, err)
	}
	return nil
}

// DeleteTransaction removes one record by id.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Delete(&models.Transaction{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(errNoRows, "transaction", id)
	}
	return nil
}

// DeleteTransactions removes the named records and returns how many existed.
func (s *Store) DeleteTransactions(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var total int64
	for _, part := range chunk(ids, s.chunkSize) {
		res := s.conn(ctx).Where("id IN ?", part).Delete(&models.Transaction{})
		if res.Error != nil {
			return total, fmt.Errorf("failed to bulk delete transactions: %w", res.Error)
		}
		total += res.RowsAffected
	}
	return total, nil
}

// DeleteByFilter removes unverified records matching f.
func (s *Store) DeleteByFilter(ctx context.Context, f BatchDeleteFilter) (int64, error) {
	q := s.conn(ctx).Where("is_verified = ?", false)
	q = whereReferencePeriod(q, f.Year, f.Month)
	if f.SourceType != "" {
		q = q.Where("source_type = ?", f.SourceType)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	res := q.Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to batch delete transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListTransactions returns records newest first.
func (s *Store) ListTransactions(ctx context.Context, f TransactionFilter) ([]models.Transaction, error) {
	q := s.filtered(ctx, f).Preload("Category")
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var txs []models.Transaction
	if err := q.Order("date DESC").Order("created_at DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// CountTransactions counts the records matching f, ignoring Skip and Limit.
func (s *Store) CountTransactions(ctx context.Context, f TransactionFilter) (int64, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}

func (s *Store) filtered(ctx context.Context, f TransactionFilter) *gorm.DB {
	q := s.conn(ctx).Model(&models.Transaction{})
	q = whereReferencePeriod(q, f.Year, f.Month)
	if f.Category != "" {
		ids := s.conn(ctx).Model(&models.Category{}).Select("id").Where("name = ?", f.Category)
		q = q.Where("(category_id IN (?) OR category_legacy = ?)", ids, f.Category)
	}
	if f.Search != "" {
		q = q.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.IsRecurring != nil {
		q = q.Where("is_recurring = ?", *f.IsRecurring)
	}
	if f.SourceType != "" {
		q = q.Where("source_type = ?", f.SourceType)
	}
	if f.UnverifiedOnly {
		q = q.Where("is_verified = ?", false)
	}
	return q
}

// TransactionsForCategorization returns unverified records to predict.
func (s *Store) TransactionsForCategorization(ctx context.Context, f CategorizationFilter) ([]models.Transaction, error) {
	q := s.conn(ctx).Preload("Category").Where("is_verified = ?", false)
	q = whereReferencePeriod(q, f.Year, f.Month)
	if !f.Force {
		q = q.Where("category_id IS NULL").
			Where("(category_legacy IS NULL OR category_legacy IN ?)", []string{"", models.CategoryUncategorized})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var txs []models.Transaction
	if err := q.Order("date DESC").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions to categorize: %w", err)
	}
	return txs, nil
}

// InstallmentCandidates returns records dated on or after since that sit
// inside a multi-charge purchase.
func (s *Store) InstallmentCandidates(ctx context.Context, since time.Time) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := s.conn(ctx).
		Where("date >= ?", since).
		Where("installment_total > ?", 1).
		Where("installment_current IS NOT NULL").
		Order("date").
		Order("created_at").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load installment plans: %w", err)
	}
	return txs, nil
}

// TransactionsInRange returns records whose reference date is in [From, To).
func (s *Store) TransactionsInRange(ctx context.Context, f RangeFilter) ([]models.Transaction, error) {
	q := s.conn(ctx).Preload("Category")
	if !f.From.IsZero() {
		q = q.Where("reference_date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("reference_date < ?", f.To)
	}
	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	if len(f.SourceTypes) > 0 {
		q = q.Where("source_type IN ?", f.SourceTypes)
	}

	var txs []models.Transaction
	if err := q.Order("reference_date").Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to load transactions in range: %w", err)
	}
	return txs, nil
}

// HistoryForCategorization returns (description, amount, category) triples
// of verified, categorized records, newest first.
func (s *Store) HistoryForCategorization(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	q := s.conn(ctx).Preload("Category").
		Where("is_verified = ?", true).
		Where("(category_id IS NOT NULL OR (category_legacy IS NOT NULL AND category_legacy NOT IN ?))",
			[]string{"", models.CategoryUncategorized}).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var txs []models.Transaction
	if err := q.Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("failed to load categorization history: %w", err)
	}

	history := make([]models.HistoryEntry, 0, len(txs))
	for _, tx := range txs {
		history = append(history, models.HistoryEntry{
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    tx.CategoryName(),
		})
	}
	s.logger.Debug("Loaded categorization history", logging.F(logging.FieldCount, len(history)))
	return history, nil
}

func whereReferencePeriod(q *gorm.DB, year, month int) *gorm.DB {
	switch {
	case year > 0 && month >= 1 && month <= 12:
		from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		return q.Where("reference_date >= ? AND reference_date < ?", from, from.AddDate(0, 1, 0))
	case year > 0:
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return q.Where("reference_date >= ? AND reference_date < ?", from, from.AddDate(1, 0, 0))
	}
	return q
}
