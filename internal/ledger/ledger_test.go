package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
	"fjacquet/cashflow/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakePredictor struct{ seen []string }

func (p *fakePredictor) Predict(_ context.Context, description string, _ decimal.Decimal, _ []models.HistoryEntry) string {
	p.seen = append(p.seen, description)
	if strings.Contains(description, "UBER") {
		return models.CategoryTransport
	}
	return models.CategoryUncategorized
}

func newTestService(t *testing.T, predictor *fakePredictor) (*Service, *store.Store, *logging.MockLogger) {
	t.Helper()
	logger := logging.NewMockLogger()
	s, err := store.OpenMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	_, err = s.SeedCategories(context.Background(), models.DefaultCategories())
	require.NoError(t, err)

	svc := NewService(s, nil, func(ctx context.Context) ([]models.HistoryEntry, error) {
		return s.HistoryForCategorization(ctx, 10)
	}, logger)
	if predictor != nil {
		svc.predictor = predictor
	}
	svc.Now = func() time.Time { return day(2025, 2, 14) }
	return svc, s, logger
}

func requireValidation(t *testing.T, err error) {
	t.Helper()
	var verr *parsererror.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateNormalizesManualEntry(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	tx, err := svc.Create(ctx, NewTransaction{
		Date:        day(2025, 3, 18),
		Description: "  Feira  ",
		Amount:      dec("87.40"),
		Type:        models.TypeExpense,
		Category:    models.CategoryFood,
	})
	require.NoError(t, err)

	assert.True(t, dec("-87.40").Equal(tx.Amount))
	assert.Equal(t, "Feira", tx.Description)
	assert.Equal(t, models.SourceManual, tx.SourceType)
	assert.Equal(t, day(2025, 3, 1), tx.ReferenceDate)
	require.NotNil(t, tx.CategoryID)
	assert.Equal(t, models.CategoryFood, tx.CategoryName())
	assert.False(t, tx.IsVerified)

	stored, err := svc.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, dec("-87.40").Equal(stored.Amount))
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   NewTransaction
	}{
		{"missing description", NewTransaction{Date: day(2025, 1, 1), Amount: dec("1"), Type: models.TypeIncome}},
		{"missing date", NewTransaction{Description: "x", Amount: dec("1"), Type: models.TypeIncome}},
		{"unknown type", NewTransaction{Date: day(2025, 1, 1), Description: "x", Amount: dec("1"), Type: "GIFT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			requireValidation(t, err)
		})
	}
}

func TestListPaging(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		_, err := svc.Create(ctx, NewTransaction{
			Date: day(2025, 1, i), Description: "row", Amount: dec("10"), Type: models.TypeExpense,
		})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, DefaultListLimit, page.Size)
	assert.Equal(t, 1, page.Page)

	page, err = svc.List(ctx, store.TransactionFilter{Skip: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, day(2025, 1, 1), page.Items[0].Date)
	assert.Equal(t, 3, page.Page)

	_, err = svc.List(ctx, store.TransactionFilter{Limit: MaxListLimit + 1})
	requireValidation(t, err)
	_, err = svc.List(ctx, store.TransactionFilter{Month: 13})
	requireValidation(t, err)
}

func TestUpdateMarksVerifiedAndNormalizes(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()

	tx, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 1, 10), Description: "Pix recebido", Amount: dec("-200"), Type: models.TypeTransfer,
	})
	require.NoError(t, err)

	typ := models.TypeIncome
	category := models.CategoryOtherIncome
	updated, err := svc.Update(ctx, tx.ID, TransactionPatch{Type: &typ, Category: &category})
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)
	assert.True(t, dec("200").Equal(updated.Amount))
	assert.Equal(t, models.CategoryOtherIncome, updated.CategoryLegacy)
	require.NotNil(t, updated.CategoryID)

	stored, err := s.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.Equal(t, models.CategoryOtherIncome, stored.CategoryName())

	cleared := ""
	updated, err = svc.Update(ctx, tx.ID, TransactionPatch{Category: &cleared})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)
	assert.Equal(t, models.CategoryUncategorized, updated.CategoryLegacy)

	missing := uint(9999)
	_, err = svc.Update(ctx, tx.ID, TransactionPatch{CategoryID: &missing})
	assert.ErrorIs(t, err, parsererror.ErrNotFound)

	_, err = svc.Update(ctx, uuid.New(), TransactionPatch{})
	assert.ErrorIs(t, err, parsererror.ErrNotFound)
}

func TestUpdateKeepsSignWhenOnlyOtherFieldsChange(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	tx, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 1, 10), Description: "Ajuste", Amount: dec("50"), Type: models.TypeTransfer,
	})
	require.NoError(t, err)

	desc := "Ajuste de saldo"
	updated, err := svc.Update(ctx, tx.ID, TransactionPatch{Description: &desc})
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(updated.Amount))
	assert.Equal(t, desc, updated.Description)
}

func TestDeleteOperations(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 1; i <= 3; i++ {
		tx, err := svc.Create(ctx, NewTransaction{
			Date: day(2025, 1, i), Description: "row", Amount: dec("1"), Type: models.TypeExpense,
		})
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	require.NoError(t, svc.Delete(ctx, ids[0]))
	assert.ErrorIs(t, svc.Delete(ctx, ids[0]), parsererror.ErrNotFound)

	n, err := svc.BulkDelete(ctx, []uuid.UUID{ids[1], ids[2], uuid.New()})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = svc.BulkDelete(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	left, err := s.CountTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestBatchDelete(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()

	plain, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 1, 5), Description: "Uber", Amount: dec("20"), Type: models.TypeExpense,
	})
	require.NoError(t, err)
	verified, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 1, 6), Description: "Aluguel", Amount: dec("2000"), Type: models.TypeExpense,
	})
	require.NoError(t, err)
	_, err = svc.Update(ctx, verified.ID, TransactionPatch{})
	require.NoError(t, err)
	other, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 2, 6), Description: "Cinema", Amount: dec("40"), Type: models.TypeExpense,
	})
	require.NoError(t, err)

	t.Run("rejects an empty filter", func(t *testing.T) {
		_, err := svc.BatchDelete(ctx, store.BatchDeleteFilter{})
		requireValidation(t, err)
	})
	t.Run("rejects month without year", func(t *testing.T) {
		_, err := svc.BatchDelete(ctx, store.BatchDeleteFilter{Month: 1})
		requireValidation(t, err)
	})
	t.Run("skips verified records", func(t *testing.T) {
		n, err := svc.BatchDelete(ctx, store.BatchDeleteFilter{Year: 2025, Month: 1})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		_, err = s.GetTransaction(ctx, plain.ID)
		assert.ErrorIs(t, err, parsererror.ErrNotFound)
		_, err = s.GetTransaction(ctx, verified.ID)
		assert.NoError(t, err)
		_, err = s.GetTransaction(ctx, other.ID)
		assert.NoError(t, err)
	})
}

func TestAutoCategorize(t *testing.T) {
	predictor := &fakePredictor{}
	svc, s, logger := newTestService(t, predictor)
	ctx := context.Background()

	uber, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 1, 7), Description: "UBER TRIP", Amount: dec("25"), Type: models.TypeExpense,
	})
	require.NoError(t, err)
	bakery, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 1, 6), Description: "PADARIA", Amount: dec("12"), Type: models.TypeExpense,
	})
	require.NoError(t, err)
	categorized, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 1, 5), Description: "UBER EATS", Amount: dec("30"), Type: models.TypeExpense,
		Category: models.CategoryFood,
	})
	require.NoError(t, err)
	verified, err := svc.Create(ctx, NewTransaction{
		Date: day(2025, 1, 4), Description: "UBER VERIFIED", Amount: dec("15"), Type: models.TypeExpense,
	})
	require.NoError(t, err)
	_, err = svc.Update(ctx, verified.ID, TransactionPatch{})
	require.NoError(t, err)

	res, err := svc.AutoCategorize(ctx, AutoCategorizeRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 1, res.Categorized)
	assert.ElementsMatch(t, []string{"UBER TRIP", "PADARIA"}, predictor.seen)
	assert.True(t, logger.HasEntry("INFO", "Auto-categorization finished"))

	got, err := s.GetTransaction(ctx, uber.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTransport, got.ManualTag)
	assert.Equal(t, models.CategoryTransport, got.CategoryName())
	require.NotNil(t, got.CategoryID)
	assert.False(t, got.IsVerified)

	got, err = s.GetTransaction(ctx, bakery.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryUncategorized, got.ManualTag)
	assert.Nil(t, got.CategoryID)

	predictor.seen = nil
	res, err = svc.AutoCategorize(ctx, AutoCategorizeRequest{Force: true, Year: 2025, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.NotContains(t, predictor.seen, "UBER VERIFIED")

	got, err = s.GetTransaction(ctx, categorized.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryTransport, got.CategoryName())

	got, err = s.GetTransaction(ctx, verified.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ManualTag)

	_, err = svc.AutoCategorize(ctx, AutoCategorizeRequest{Limit: MaxCategorizeLimit + 1})
	requireValidation(t, err)
}

func TestAutoCategorizeWithoutPredictor(t *testing.T) {
	svc, _, logger := newTestService(t, nil)

	res, err := svc.AutoCategorize(context.Background(), AutoCategorizeRequest{})
	require.NoError(t, err)
	assert.Zero(t, res.Processed)
	assert.True(t, logger.HasEntry("WARN", "Auto-categorization requested without a predictor"))
}

func TestPayInvoice(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()

	legs, err := svc.PayInvoice(ctx, InvoicePayment{Amount: dec("1530.75"), Date: day(2025, 2, 10)})
	require.NoError(t, err)
	require.Len(t, legs, 2)

	byType := map[string]models.Transaction{}
	for _, leg := range legs {
		byType[leg.SourceType] = leg
		assert.Equal(t, models.TypeTransfer, leg.Type)
		assert.True(t, leg.IsVerified)
		assert.Equal(t, day(2025, 2, 10), leg.Date)
	}
	assert.True(t, dec("-1530.75").Equal(byType[models.SourceAccount].Amount))
	assert.True(t, dec("1530.75").Equal(byType[models.SourceCard].Amount))

	n, err := s.CountTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = svc.PayInvoice(ctx, InvoicePayment{Amount: dec("0")})
	requireValidation(t, err)
}

func TestPayInvoiceDefaultsToToday(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	legs, err := svc.PayInvoice(context.Background(), InvoicePayment{Amount: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, day(2025, 2, 14), legs[0].Date)
}
