package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
	"fjacquet/cashflow/internal/store"
)

func TestMaterialize(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()

	inactive := false
	end := day(2025, 1, 31)
	for _, in := range []NewTemplate{
		{Description: "Aluguel", Amount: dec("2500"), Type: models.TypeExpense, Category: models.CategoryHousing,
			DayOfMonth: 31, StartDate: day(2024, 6, 1)},
		{Description: "Salário", Amount: dec("8000"), Type: models.TypeIncome, DayOfMonth: 5, StartDate: day(2024, 1, 1)},
		{Description: "Academia", Amount: dec("120"), Type: models.TypeExpense, DayOfMonth: 10,
			StartDate: day(2024, 1, 1), IsActive: &inactive},
		{Description: "Curso", Amount: dec("300"), Type: models.TypeExpense, DayOfMonth: 15,
			StartDate: day(2024, 9, 1), EndDate: &end},
		{Description: "Seguro", Amount: dec("90"), Type: models.TypeExpense, DayOfMonth: 20, StartDate: day(2025, 3, 1)},
	} {
		_, err := svc.CreateTemplate(ctx, in)
		require.NoError(t, err)
	}

	n, err := svc.Materialize(ctx, 2025, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	txs, err := s.ListTransactions(ctx, store.TransactionFilter{Year: 2025, Month: 2})
	require.NoError(t, err)
	require.Len(t, txs, 2)

	rent := txs[0]
	assert.Equal(t, "Aluguel", rent.Description)
	assert.Equal(t, day(2025, 2, 28), rent.Date)
	assert.Equal(t, rent.Date, rent.ReferenceDate)
	assert.True(t, dec("-2500").Equal(rent.Amount))
	assert.Equal(t, models.SourceRecurring, rent.SourceType)
	assert.True(t, rent.IsRecurring)
	require.NotNil(t, rent.CategoryID)
	assert.Equal(t, models.CategoryHousing, rent.CategoryName())

	salary := txs[1]
	assert.Equal(t, day(2025, 2, 5), salary.Date)
	assert.True(t, dec("8000").Equal(salary.Amount))

	t.Run("second run inserts nothing", func(t *testing.T) {
		n, err := svc.Materialize(ctx, 2025, 2)
		require.NoError(t, err)
		assert.Zero(t, n)

		total, err := s.CountTransactions(ctx, store.TransactionFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
	})

	t.Run("end date month is still covered", func(t *testing.T) {
		n, err := svc.Materialize(ctx, 2025, 1)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("rejects a bad month", func(t *testing.T) {
		_, err := svc.Materialize(ctx, 2025, 0)
		requireValidation(t, err)
	})
}

func TestMaterializeWithoutTemplates(t *testing.T) {
	svc, _, logger := newTestService(t, nil)

	n, err := svc.Materialize(context.Background(), 2025, 5)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, logger.HasEntry("INFO", "No active recurring templates for period"))
}

func TestMaterializeCurrent(t *testing.T) {
	svc, s, _ := newTestService(t, nil)
	ctx := context.Background()
	_, err := svc.CreateTemplate(ctx, NewTemplate{
		Description: "Internet", Amount: dec("-99.90"), Type: models.TypeExpense, DayOfMonth: 30, StartDate: day(2025, 1, 1),
	})
	require.NoError(t, err)

	n, err := svc.MaterializeCurrent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	txs, err := s.ListTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, day(2025, 2, 28), txs[0].Date)
}

func TestTemplateLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	tmpl, err := svc.CreateTemplate(ctx, NewTemplate{
		Description: "Netflix", Amount: dec("55.90"), Type: models.TypeExpense, StartDate: day(2025, 1, 15),
	})
	require.NoError(t, err)
	assert.True(t, tmpl.IsActive)
	assert.Equal(t, 1, tmpl.DayOfMonth)
	assert.Equal(t, models.SourceAccount, tmpl.SourceType)
	assert.True(t, dec("-55.90").Equal(tmpl.Amount))

	typ := models.TypeIncome
	category := models.CategoryOtherIncome
	active := false
	end := day(2025, 6, 30)
	updated, err := svc.UpdateTemplate(ctx, tmpl.ID, TemplatePatch{
		Type: &typ, Category: &category, IsActive: &active, EndDate: &end,
	})
	require.NoError(t, err)
	assert.True(t, dec("55.90").Equal(updated.Amount))
	assert.False(t, updated.IsActive)
	require.NotNil(t, updated.CategoryID)
	require.NotNil(t, updated.EndDate)

	stored, err := svc.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2025, 6, 30), *stored.EndDate)
	assert.Equal(t, models.CategoryOtherIncome, stored.CategoryLegacy)

	updated, err = svc.UpdateTemplate(ctx, tmpl.ID, TemplatePatch{ClearEndDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.EndDate)

	badDay := 32
	_, err = svc.UpdateTemplate(ctx, tmpl.ID, TemplatePatch{DayOfMonth: &badDay})
	requireValidation(t, err)

	all, err := svc.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteTemplate(ctx, tmpl.ID))
	assert.ErrorIs(t, svc.DeleteTemplate(ctx, tmpl.ID), parsererror.ErrNotFound)
	_, err = svc.UpdateTemplate(ctx, uuid.New(), TemplatePatch{})
	assert.ErrorIs(t, err, parsererror.ErrNotFound)
}

func TestCreateTemplateRequiresStartDate(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.CreateTemplate(context.Background(), NewTemplate{
		Description: "Luz", Amount: dec("200"), Type: models.TypeExpense,
	})
	requireValidation(t, err)
}

func TestScenarioLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	sc, err := svc.CreateScenario(ctx, NewScenario{
		Name: "Carro novo",
		Items: []models.ScenarioItem{
			{Description: "Entrada", Amount: dec("10000"), Type: models.TypeExpense, StartDate: day(2025, 3, 10)},
		},
	})
	require.NoError(t, err)
	require.Len(t, sc.Items, 1)
	assert.Equal(t, 1, sc.Items[0].Installments)
	assert.Equal(t, models.SourceManual, sc.Items[0].SourceType)
	assert.True(t, dec("-10000").Equal(sc.Items[0].Amount))

	sc, err = svc.AddScenarioItem(ctx, sc.ID, models.ScenarioItem{
		Description: "Parcelas", Amount: dec("1500"), Type: models.TypeExpense,
		StartDate: day(2025, 4, 1), Installments: 24,
	})
	require.NoError(t, err)
	require.Len(t, sc.Items, 2)

	_, err = svc.AddScenarioItem(ctx, sc.ID, models.ScenarioItem{Description: "x", Type: models.TypeExpense})
	requireValidation(t, err)
	_, err = svc.AddScenarioItem(ctx, 9999, models.ScenarioItem{
		Description: "x", Amount: dec("1"), Type: models.TypeExpense, StartDate: day(2025, 1, 1),
	})
	assert.ErrorIs(t, err, parsererror.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteScenarioItem(ctx, sc.ID+1, sc.Items[0].ID), parsererror.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteScenarioItem(ctx, sc.ID, 9999), parsererror.ErrNotFound)
	require.NoError(t, svc.DeleteScenarioItem(ctx, sc.ID, sc.Items[0].ID))
	got, err := svc.GetScenario(ctx, sc.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	all, err := svc.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteScenario(ctx, sc.ID))
	_, err = svc.GetScenario(ctx, sc.ID)
	assert.ErrorIs(t, err, parsererror.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteScenario(ctx, sc.ID), parsererror.ErrNotFound)
}

func TestCreateScenarioValidation(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateScenario(ctx, NewScenario{Name: "  "})
	requireValidation(t, err)

	_, err = svc.CreateScenario(ctx, NewScenario{Name: "ok", Items: []models.ScenarioItem{{Description: "x"}}})
	requireValidation(t, err)
}

func TestSeedCategories(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	n, err := svc.SeedCategories(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(models.DefaultCategories()))
}
