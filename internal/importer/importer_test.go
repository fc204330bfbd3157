package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/internal/categorizer"
	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/dedup"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
	"fjacquet/cashflow/internal/statement"
	"fjacquet/cashflow/internal/store"
)

const cardCSV = `Data;Estabelecimento;Portador;Valor;Parcela
15/01/2025;PADARIA REAL;ANA S;R$ 45,90;
15/01/2025;PADARIA REAL;ANA S;R$ 45,90;
16/01/2025;UBER TRIP;ANA S;R$ 50,00;
`

type keywordPredictor struct{ calls int }

func (p *keywordPredictor) Predict(_ context.Context, description string, _ decimal.Decimal, _ []models.HistoryEntry) string {
	p.calls++
	switch {
	case strings.Contains(description, "UBER"):
		return models.CategoryTransport
	case strings.Contains(description, "PADARIA"):
		return "Padaria"
	}
	return models.CategoryUncategorized
}

func newTestService(t *testing.T, opts Options, predictor *keywordPredictor) (*Service, *store.Store) {
	t.Helper()
	logger := logging.NewMockLogger()
	s, err := store.OpenMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var p categorizer.Predictor
	if predictor != nil {
		p = predictor
	}
	svc := NewService(
		statement.NewExtractor(logger, ';', []string{"pagamento de fatura"}),
		s,
		dedup.NewEngine(s, logger),
		p,
		opts,
		logger,
	)
	return svc, s
}

func upload(name, content string) Upload {
	return Upload{Filename: name, Content: strings.NewReader(content)}
}

func TestImportFiles(t *testing.T) {
	svc, s := newTestService(t, Options{}, nil)
	ctx := context.Background()

	report := svc.ImportFiles(ctx, []Upload{
		upload("fatura-jan.csv", cardCSV),
		upload("notes.txt", "hello"),
		upload("weird.csv", "Foo;Bar\n1;2\n"),
	}, nil)

	require.Len(t, report.Results, 3)
	assert.Equal(t, StatusPartial, report.Status)
	assert.Equal(t, 3, report.TotalImported)

	ok := report.Results[0]
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.Equal(t, 3, ok.Count)

	var format *parsererror.InvalidFormatError
	assert.Equal(t, StatusError, report.Results[1].Status)
	assert.True(t, errors.As(report.Results[1].Err, &format))
	assert.Equal(t, StatusError, report.Results[2].Status)
	assert.True(t, errors.As(report.Results[2].Err, &format))
	assert.Equal(t, []string{"Foo", "Bar"}, format.Headers)

	all, err := s.ListTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReimportIsRejected(t *testing.T) {
	svc, s := newTestService(t, Options{}, nil)
	ctx := context.Background()

	first := svc.ImportFiles(ctx, []Upload{upload("fatura-jan.csv", cardCSV)}, nil)
	require.Equal(t, StatusSuccess, first.Results[0].Status)

	second := svc.ImportFiles(ctx, []Upload{upload("fatura-jan.csv", cardCSV)}, nil)
	assert.Equal(t, StatusError, second.Status)
	res := second.Results[0]
	assert.Equal(t, StatusError, res.Status)
	var dup *parsererror.DuplicateFileError
	assert.True(t, errors.As(res.Err, &dup))
	assert.Contains(t, res.Message, "already been imported")
	assert.Zero(t, second.TotalImported)

	// Same rows under another name commit nothing new.
	third := svc.ImportFiles(ctx, []Upload{upload("fatura-jan-copy.csv", cardCSV)}, nil)
	assert.Equal(t, StatusSuccess, third.Status)
	assert.Equal(t, StatusSuccess, third.Results[0].Status)
	assert.Zero(t, third.Results[0].Count)

	all, err := s.ListTransactions(ctx, store.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestImportWithPeriodAndReconciliation(t *testing.T) {
	svc, s := newTestService(t, Options{}, nil)
	ctx := context.Background()

	manual, err := models.NewTransactionBuilder().
		WithDate(dateutils.Date(2025, 1, 15)).
		WithDescription("Uber pro trabalho").
		WithAmount(decimal.RequireFromString("-50")).
		WithType(models.TypeExpense).
		Build()
	require.NoError(t, err)
	require.NoError(t, s.CreateTransaction(ctx, &manual))

	report := svc.ImportFiles(ctx, []Upload{upload("fatura-fev.csv", cardCSV)}, &Period{Year: 2025, Month: 2})
	res := report.Results[0]
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.ReconciliationCandidates, 1)
	assert.Equal(t, manual.ID, res.ReconciliationCandidates[0].ID)

	feb, err := s.ListTransactions(ctx, store.TransactionFilter{Year: 2025, Month: 2})
	require.NoError(t, err)
	assert.Len(t, feb, 3)
}

func TestAutoCategorize(t *testing.T) {
	predictor := &keywordPredictor{}
	svc, s := newTestService(t, Options{AutoCategorize: true, HistoryLimit: 10}, predictor)
	ctx := context.Background()
	_, err := s.SeedCategories(ctx, models.DefaultCategories())
	require.NoError(t, err)

	report := svc.ImportFiles(ctx, []Upload{upload("fatura-jan.csv", cardCSV)}, nil)
	require.Equal(t, StatusSuccess, report.Results[0].Status)
	assert.Equal(t, 3, predictor.calls)

	uber, err := s.ListTransactions(ctx, store.TransactionFilter{Search: "uber"})
	require.NoError(t, err)
	require.Len(t, uber, 1)
	assert.Equal(t, models.CategoryTransport, uber[0].ManualTag)
	require.NotNil(t, uber[0].CategoryID)
	assert.Equal(t, models.CategoryTransport, uber[0].CategoryName())
	assert.False(t, uber[0].IsVerified)

	bakery, err := s.ListTransactions(ctx, store.TransactionFilter{Search: "padaria"})
	require.NoError(t, err)
	require.Len(t, bakery, 2)
	assert.Nil(t, bakery[0].CategoryID)
	assert.Equal(t, "Padaria", bakery[0].CategoryName())
}

func TestReportStatus(t *testing.T) {
	ok := FileResult{Status: StatusSuccess}
	bad := FileResult{Status: StatusError}
	tests := []struct {
		name    string
		results []FileResult
		want    string
	}{
		{"empty batch", nil, StatusSuccess},
		{"all imported", []FileResult{ok, ok}, StatusSuccess},
		{"some failed", []FileResult{ok, bad}, StatusPartial},
		{"all failed", []FileResult{bad, bad}, StatusError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reportStatus(tt.results))
		})
	}
}

func TestNewPeriod(t *testing.T) {
	year, month, bad := 2025, 3, 13

	p, err := NewPeriod(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = NewPeriod(&year, &month)
	require.NoError(t, err)
	assert.Equal(t, dateutils.Date(2025, 3, 1), p.ReferenceDate())

	var validation *parsererror.ValidationError
	_, err = NewPeriod(&year, nil)
	assert.True(t, errors.As(err, &validation))
	_, err = NewPeriod(&year, &bad)
	assert.True(t, errors.As(err, &validation))
}
