package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
	"fjacquet/cashflow/internal/store"
)

// Paging bounds.
const (
	DefaultListLimit       = 100
	MaxListLimit           = 100
	DefaultCategorizeLimit = 100
	MaxCategorizeLimit     = 500
)

// InvoicePaymentDescription labels both legs of a card bill payment.
const InvoicePaymentDescription = "Pagamento de fatura"

// Page is one window of a transaction listing.
type Page struct {
	Items []models.Transaction `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
}

// NewTransaction is a manually entered record.
type NewTransaction struct {
	Date          time.Time
	ReferenceDate *time.Time
	Description   string
	Amount        decimal.Decimal
	Type          models.TransactionType
	Category      string
	SourceType    string
	IsRecurring   bool
	ManualTag     string
}

// TransactionPatch carries the fields to change; nil leaves a field as is.
// An empty Category clears the category.
type TransactionPatch struct {
	Date          *time.Time
	ReferenceDate *time.Time
	Description   *string
	Amount        *decimal.Decimal
	Type          *models.TransactionType
	Category      *string
	CategoryID    *uint
	ManualTag     *string
	IsRecurring   *bool
}

// AutoCategorizeRequest selects the records to predict.
type AutoCategorizeRequest struct {
	Limit int
	Month int
	Year  int
	// Force re-predicts records that already carry a category. Verified
	// records are skipped regardless.
	Force bool
}

// AutoCategorizeResult summarizes a run.
type AutoCategorizeResult struct {
	Processed   int `json:"processed"`
	Categorized int `json:"categorized"`
}

// InvoicePayment moves money from the checking account to the card.
type InvoicePayment struct {
	Amount decimal.Decimal
	Date   time.Time
}

// List returns one page of records, newest first.
func (s *Service) List(ctx context.Context, f store.TransactionFilter) (*Page, error) {
	if f.Month != 0 && (f.Month < 1 || f.Month > 12) {
		return nil, &parsererror.ValidationError{Field: "month", Reason: fmt.Sprintf("%d is not between 1 and 12", f.Month)}
	}
	if f.Skip < 0 {
		return nil, &parsererror.ValidationError{Field: "skip", Reason: "must not be negative"}
	}
	switch {
	case f.Limit == 0:
		f.Limit = DefaultListLimit
	case f.Limit < 0 || f.Limit > MaxListLimit:
		return nil, &parsererror.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxListLimit)}
	}

	items, err := s.repo.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Transaction{}
	}
	return &Page{Items: items, Total: total, Page: f.Skip/f.Limit + 1, Size: f.Limit}, nil
}

// Get loads one record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

// Create stores a manual record. The amount sign follows the type and the
// reference date defaults to the first of the record's month.
func (s *Service) Create(ctx context.Context, in NewTransaction) (*models.Transaction, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, &parsererror.ValidationError{Field: "description", Reason: "is required"}
	}
	if in.Date.IsZero() {
		return nil, &parsererror.ValidationError{Field: "date", Reason: "is required"}
	}

	b := models.NewTransactionBuilder().
		WithDate(in.Date).
		WithReferenceDate(in.ReferenceDate).
		WithDescription(strings.TrimSpace(in.Description)).
		WithType(in.Type).
		WithAmount(models.NormalizeAmount(in.Type, in.Amount))
	if in.SourceType != "" {
		b = b.WithSourceType(in.SourceType)
	}
	if in.IsRecurring {
		b = b.AsRecurring()
	}
	if in.Category != "" {
		cat, err := s.repo.CategoryByName(ctx, in.Category)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			b = b.WithCategory(cat)
		} else {
			b = b.WithCategoryLegacy(in.Category)
		}
	}

	tx, err := b.Build()
	if err != nil {
		return nil, &parsererror.ValidationError{Field: "transaction", Reason: err.Error()}
	}
	tx.ManualTag = in.ManualTag
	if err := s.repo.CreateTransaction(ctx, &tx); err != nil {
		return nil, err
	}
	s.logger.Info("Transaction created",
		logging.F(logging.FieldTransactionID, tx.ID.String()),
		logging.F(logging.FieldSourceType, tx.SourceType))
	return &tx, nil
}

// Update applies patch to the record and marks it verified. When the type
// or the amount changes the sign is normalized again.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch TransactionPatch) (*models.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Date != nil {
		tx.Date = dateutils.Truncate(*patch.Date)
	}
	if patch.ReferenceDate != nil {
		tx.ReferenceDate = dateutils.Truncate(*patch.ReferenceDate)
	}
	if patch.Description != nil {
		tx.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil || patch.Amount != nil {
		tx.Amount = models.NormalizeAmount(tx.Type, tx.Amount)
	}
	if patch.ManualTag != nil {
		tx.ManualTag = *patch.ManualTag
	}
	if patch.IsRecurring != nil {
		tx.IsRecurring = *patch.IsRecurring
	}

	switch {
	case patch.CategoryID != nil:
		cat, err := s.repo.GetCategory(ctx, *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		linkCategory(tx, cat, cat.Name)
	case patch.Category != nil:
		if err := s.assignCategoryName(ctx, tx, *patch.Category); err != nil {
			return nil, err
		}
	}

	if tx.Description == "" {
		return nil, &parsererror.ValidationError{Field: "description", Reason: "is required"}
	}
	if err := tx.Validate(); err != nil {
		return nil, &parsererror.ValidationError{Field: "transaction", Reason: err.Error()}
	}

	tx.IsVerified = true
	if err := s.repo.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}
	s.logger.Debug("Transaction updated", logging.F(logging.FieldTransactionID, tx.ID.String()))
	return tx, nil
}

// Delete removes one record, verified or not.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// BulkDelete removes the named records, verified or not, and returns how
// many existed.
func (s *Service) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.repo.DeleteTransactions(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Transactions deleted", logging.F(logging.FieldCount, n))
	return n, nil
}

// BatchDelete removes the unverified records matching f. At least one
// criterion is required so an empty filter never wipes the ledger.
func (s *Service) BatchDelete(ctx context.Context, f store.BatchDeleteFilter) (int64, error) {
	if f.Year == 0 && f.Month == 0 && f.SourceType == "" && f.CategoryID == nil {
		return 0, &parsererror.ValidationError{Field: "filter", Reason: "at least one of year, month, source_type or category_id is required"}
	}
	if f.Month != 0 {
		if f.Month < 1 || f.Month > 12 {
			return 0, &parsererror.ValidationError{Field: "month", Reason: fmt.Sprintf("%d is not between 1 and 12", f.Month)}
		}
		if f.Year == 0 {
			return 0, &parsererror.ValidationError{Field: "month", Reason: "requires year"}
		}
	}

	n, err := s.repo.DeleteByFilter(ctx, f)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Batch delete finished",
		logging.F(logging.FieldCount, n),
		logging.F(logging.FieldSourceType, f.SourceType))
	return n, nil
}

// AutoCategorize predicts a category for unverified records. Each
// prediction is kept as the manual tag; a prediction other than the
// uncategorized sentinel also becomes the record's category.
func (s *Service) AutoCategorize(ctx context.Context, req AutoCategorizeRequest) (*AutoCategorizeResult, error) {
	switch {
	case req.Limit == 0:
		req.Limit = DefaultCategorizeLimit
	case req.Limit < 0 || req.Limit > MaxCategorizeLimit:
		return nil, &parsererror.ValidationError{Field: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxCategorizeLimit)}
	}
	if req.Month != 0 && (req.Month < 1 || req.Month > 12) {
		return nil, &parsererror.ValidationError{Field: "month", Reason: fmt.Sprintf("%d is not between 1 and 12", req.Month)}
	}

	result := &AutoCategorizeResult{}
	if s.predictor == nil {
		s.logger.Warn("Auto-categorization requested without a predictor")
		return result, nil
	}

	txs, err := s.repo.TransactionsForCategorization(ctx, store.CategorizationFilter{
		Month: req.Month,
		Year:  req.Year,
		Limit: req.Limit,
		Force: req.Force,
	})
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return result, nil
	}

	var history []models.HistoryEntry
	if s.history != nil {
		if history, err = s.history(ctx); err != nil {
			s.logger.WithError(err).Warn("Categorization history unavailable")
			history = nil
		}
	}

	cache := make(map[string]*models.Category)
	for i := range txs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		tx := &txs[i]
		predicted := s.predictor.Predict(ctx, tx.Description, tx.Amount, history)
		tx.ManualTag = predicted
		if predicted != models.CategoryUncategorized {
			cat, ok := cache[predicted]
			if !ok {
				if cat, err = s.repo.CategoryByName(ctx, predicted); err != nil {
					return result, err
				}
				cache[predicted] = cat
			}
			linkCategory(tx, cat, predicted)
			result.Categorized++
		}
		if err := s.repo.SaveTransaction(ctx, tx); err != nil {
			return result, err
		}
		result.Processed++
	}

	s.logger.Info("Auto-categorization finished",
		logging.F(logging.FieldCount, result.Processed),
		logging.F(logging.FieldCategorized, result.Categorized))
	return result, nil
}

// PayInvoice records a card bill payment as two verified transfers: an
// outflow from the checking account and the matching inflow on the card.
func (s *Service) PayInvoice(ctx context.Context, p InvoicePayment) ([]models.Transaction, error) {
	if !p.Amount.IsPositive() {
		return nil, &parsererror.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	date := p.Date
	if date.IsZero() {
		date = s.Now()
	}
	amount := p.Amount.Round(2)

	legs := make([]models.Transaction, 0, 2)
	for _, leg := range []struct {
		source string
		amount decimal.Decimal
	}{
		{models.SourceAccount, amount.Neg()},
		{models.SourceCard, amount},
	} {
		tx, err := models.NewTransactionBuilder().
			WithDate(date).
			WithDescription(InvoicePaymentDescription).
			WithAmount(leg.amount).
			WithType(models.TypeTransfer).
			WithSourceType(leg.source).
			AsVerified().
			Build()
		if err != nil {
			return nil, &parsererror.ValidationError{Field: "payment", Reason: err.Error()}
		}
		legs = append(legs, tx)
	}

	err := s.repo.RunInTx(ctx, func(ctx context.Context) error {
		for i := range legs {
			if err := s.repo.CreateTransaction(ctx, &legs[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record invoice payment: %w", err)
	}
	s.logger.Info("Invoice payment recorded", logging.F(logging.FieldAmount, amount.String()))
	return legs, nil
}

func (s *Service) assignCategoryName(ctx context.Context, tx *models.Transaction, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == models.CategoryUncategorized {
		linkCategory(tx, nil, models.CategoryUncategorized)
		return nil
	}
	cat, err := s.repo.CategoryByName(ctx, name)
	if err != nil {
		return err
	}
	linkCategory(tx, cat, name)
	return nil
}

// linkCategory sets the legacy name and, when cat is known, the link.
func linkCategory(tx *models.Transaction, cat *models.Category, name string) {
	tx.CategoryLegacy = name
	tx.Category = cat
	if cat == nil {
		tx.CategoryID = nil
		return
	}
	id := cat.ID
	tx.CategoryID = &id
}
