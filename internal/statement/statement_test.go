package statement

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
)

const cardCSV = `Data;Estabelecimento;Portador;Valor;Parcela
15/01/2025;PADARIA REAL;ANA S;R$ 45,90;-
16/01/2025 às 10:22:01;MAGAZINE LUIZA;ANA S;R$ 300,00;3 de 10
20/01/2025;PAGAMENTO DE FATURA;ANA S;-R$ 1.500,00;
21/01/2025;ESTORNO LOJA;BRUNO S;-R$ 20,00;
xx/01/2025;DATA RUIM;ANA S;R$ 1,00;
22/01/2025;VALOR RUIM;ANA S;abc;
`

const accountCSV = "\ufeffData;Descrição;Valor;Saldo\n" +
	"05/01/2025;SALARIO EMPRESA X;R$ 5.000,00;R$ 6.000,00\n" +
	"06/01/2025;PIX ENVIADO;-R$ 120,00;R$ 5.880,00\n" +
	"10/01/2025;Pagamento de fatura cartão;-R$ 1.500,00;R$ 4.380,00\n" +
	"\n"

func newTestExtractor() (*Extractor, *logging.MockLogger) {
	logger := logging.NewMockLogger()
	return NewExtractor(logger, ';', []string{"pagamento de fatura"}), logger
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    Dialect
	}{
		{"card", []string{"Data", "Estabelecimento", "Portador", "Valor", "Parcela"}, DialectCard},
		{"account accented", []string{"Data", "Descrição", "Valor", "Saldo"}, DialectAccount},
		{"account unaccented", []string{"Data", "Descricao", "Valor", "Saldo"}, DialectAccount},
		{"account entry layout", []string{"Data", "Lançamento", "Valor"}, DialectAccount},
		{"account entry unaccented lower case", []string{"data", "lancamento", "valor"}, DialectAccount},
		{"padded headers with bom", []string{"\ufeff Portador ", " Parcela"}, DialectCard},
		{"portador without parcela", []string{"Data", "Portador", "Valor"}, DialectUnknown},
		{"english headers", []string{"Date", "Description", "Amount"}, DialectUnknown},
		{"empty", nil, DialectUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.headers))
		})
	}
}

func TestExtract_Card(t *testing.T) {
	ex, logger := newTestExtractor()

	res, err := ex.Extract(strings.NewReader(cardCSV), Options{Filename: "fatura-jan.csv"})
	require.NoError(t, err)

	assert.Equal(t, DialectCard, res.Dialect)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, res.Transactions, 4)

	bakery := res.Transactions[0]
	assert.True(t, bakery.Amount.Equal(decimal.RequireFromString("-45.90")))
	assert.Equal(t, models.TypeExpense, bakery.Type)
	assert.Equal(t, models.SourceCard, bakery.SourceType)
	assert.Nil(t, bakery.InstallmentTotal)
	assert.False(t, bakery.IsRecurring)
	assert.Equal(t, "ANA S", *bakery.Cardholder)
	assert.Equal(t, dateutils.Date(2025, 1, 1), bakery.ReferenceDate)
	assert.Equal(t, "fatura-jan.csv", bakery.SourceFilename())
	assert.Equal(t, models.CategoryUncategorized, bakery.CategoryLegacy)

	store := res.Transactions[1]
	assert.Equal(t, dateutils.Date(2025, 1, 16), store.Date)
	require.NotNil(t, store.InstallmentCurrent)
	assert.Equal(t, 3, *store.InstallmentCurrent)
	assert.Equal(t, 10, *store.InstallmentTotal)
	assert.True(t, store.IsRecurring)

	payment := res.Transactions[2]
	assert.Equal(t, models.TypeTransfer, payment.Type)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(1500)))

	refund := res.Transactions[3]
	assert.Equal(t, models.TypeIncome, refund.Type)
	assert.True(t, refund.Amount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "BRUNO S", *refund.Cardholder)

	assert.True(t, logger.HasEntry("INFO", "Statement extracted"))
	assert.Len(t, logger.EntriesByLevel("DEBUG"), 2)
}

func TestExtract_CardPolarity(t *testing.T) {
	ex, _ := newTestExtractor()
	csv := "Data;Estabelecimento;Portador;Valor;Parcela\n" +
		"01/02/2025;LOJA;ANA;R$ 10,00;1\n" +
		"02/02/2025;CASHBACK;ANA;-R$ 10,00;1\n"

	res, err := ex.Extract(strings.NewReader(csv), Options{Filename: "f.csv"})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)

	assert.Equal(t, models.TypeExpense, res.Transactions[0].Type)
	assert.True(t, res.Transactions[0].Amount.IsNegative())
	assert.Equal(t, models.TypeIncome, res.Transactions[1].Type)
	assert.True(t, res.Transactions[1].Amount.IsPositive())
	assert.False(t, res.Transactions[0].IsRecurring, "a single installment is not a plan")
}

func TestExtract_CardKeepsRowWithInconsistentInstallment(t *testing.T) {
	ex, logger := newTestExtractor()
	csv := "Data;Estabelecimento;Portador;Valor;Parcela\n" +
		"01/02/2025;LOJA X;ANA;R$ 100,00;3 de 2\n" +
		"02/02/2025;LOJA Y;ANA;R$ 10,00;-\n"

	res, err := ex.Extract(strings.NewReader(csv), Options{Filename: "f.csv"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, res.Transactions, 2)

	kept := res.Transactions[0]
	assert.Equal(t, "LOJA X", kept.Description)
	assert.True(t, kept.Amount.Equal(decimal.NewFromInt(-100)))
	assert.Nil(t, kept.InstallmentCurrent)
	assert.Nil(t, kept.InstallmentTotal)
	assert.False(t, kept.IsRecurring)
	assert.True(t, logger.HasEntry("DEBUG", "Ignoring inconsistent installment"))
}

func TestExtract_Account(t *testing.T) {
	ex, _ := newTestExtractor()

	res, err := ex.Extract(strings.NewReader(accountCSV), Options{Filename: "extrato.csv"})
	require.NoError(t, err)

	assert.Equal(t, DialectAccount, res.Dialect)
	require.Len(t, res.Transactions, 3)

	salary := res.Transactions[0]
	assert.Equal(t, "SALARIO EMPRESA X", salary.Description)
	assert.Equal(t, models.TypeIncome, salary.Type)
	assert.True(t, salary.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, models.SourceAccount, salary.SourceType)
	assert.Nil(t, salary.Cardholder)

	pix := res.Transactions[1]
	assert.Equal(t, models.TypeExpense, pix.Type)
	assert.True(t, pix.Amount.Equal(decimal.NewFromInt(-120)))

	invoice := res.Transactions[2]
	assert.Equal(t, models.TypeTransfer, invoice.Type)
	assert.True(t, invoice.Amount.Equal(decimal.NewFromInt(-1500)))
}

func TestExtract_AccountEntryLayout(t *testing.T) {
	ex, _ := newTestExtractor()
	csv := "Data;Lançamento;Valor\n07/03/2025;TARIFA;-R$ 12,90\n"

	res, err := ex.Extract(strings.NewReader(csv), Options{Filename: "x.csv"})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "TARIFA", res.Transactions[0].Description)
	assert.Equal(t, models.TypeExpense, res.Transactions[0].Type)
}

func TestExtract_ReferenceOverride(t *testing.T) {
	ex, _ := newTestExtractor()
	ref := dateutils.Date(2025, 2, 1)

	res, err := ex.Extract(strings.NewReader(cardCSV), Options{Filename: "f.csv", ReferenceDate: &ref})
	require.NoError(t, err)
	for _, tx := range res.Transactions {
		assert.Equal(t, ref, tx.ReferenceDate)
		assert.Equal(t, time.January, tx.Date.Month())
	}
}

func TestExtract_UnknownDialect(t *testing.T) {
	ex, logger := newTestExtractor()

	res, err := ex.Extract(strings.NewReader("Date;Amount\n2025-01-01;10\n"), Options{Filename: "other.csv"})
	require.NoError(t, err)
	assert.Equal(t, DialectUnknown, res.Dialect)
	assert.Empty(t, res.Transactions)
	assert.Equal(t, []string{"Date", "Amount"}, res.Headers)
	assert.True(t, logger.HasEntry("WARN", "Unrecognized statement headers"))
}

func TestExtract_EmptyFile(t *testing.T) {
	ex, _ := newTestExtractor()

	res, err := ex.Extract(strings.NewReader(""), Options{Filename: "empty.csv"})
	require.NoError(t, err)
	assert.Equal(t, DialectUnknown, res.Dialect)
	assert.Empty(t, res.Transactions)
}

func TestDialectSourceType(t *testing.T) {
	assert.Equal(t, models.SourceCard, DialectCard.SourceType())
	assert.Equal(t, models.SourceAccount, DialectAccount.SourceType())
	assert.Empty(t, DialectUnknown.SourceType())
}
