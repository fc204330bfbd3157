package statement

import (
	"fjacquet/cashflow/internal/currencyutils"
	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/textutils"
)

// cardRow is one line of a credit card invoice export.
type cardRow struct {
	Date        string `csv:"Data"`
	Merchant    string `csv:"Estabelecimento"`
	Cardholder  string `csv:"Portador"`
	Amount      string `csv:"Valor"`
	Installment string `csv:"Parcela"`
}

type cardExtractor struct {
	base *Extractor
	log  logging.Logger
}

// extract inverts the raw sign: card exports list purchases as positive
// values and refunds or payments as negative ones.
func (c *cardExtractor) extract(rows *recordReader, opts Options) ([]models.Transaction, int, error) {
	var decoded []cardRow
	if err := decodeRows(rows, &decoded); err != nil {
		return nil, 0, err
	}

	txs := make([]models.Transaction, 0, len(decoded))
	skipped := 0
	for i, row := range decoded {
		line := i + 2

		date, ok := dateutils.ParseStatementDate(row.Date)
		if !ok {
			skipRow(c.log, DialectCard, line, colDate, row.Date, "unparseable date")
			skipped++
			continue
		}
		raw, ok := currencyutils.ParseAmount(row.Amount)
		if !ok {
			skipRow(c.log, DialectCard, line, colAmount, row.Amount, "unparseable amount")
			skipped++
			continue
		}

		description := trimmed(row.Merchant)
		amount := raw.Neg()
		typ := models.TypeExpense
		if !raw.IsPositive() {
			amount = raw.Abs()
			typ = models.TypeIncome
		}
		if c.base.isInvoicePayment(description) {
			typ = models.TypeTransfer
		}

		b := models.NewTransactionBuilder().
			WithDate(date).
			WithReferenceDate(opts.ReferenceDate).
			WithDescription(description).
			WithAmount(amount).
			WithType(typ).
			WithSourceType(models.SourceCard).
			WithCardholder(trimmed(row.Cardholder)).
			WithSourceFile(opts.Filename)
		if inst, ok := textutils.ParseInstallment(row.Installment); ok {
			if inst.Current <= inst.Total {
				b = b.WithInstallment(inst.Current, inst.Total)
			} else {
				c.log.Debug("Ignoring inconsistent installment",
					logging.F(logging.FieldRow, line),
					logging.F(logging.FieldReason, row.Installment))
			}
		}

		tx, err := b.Build()
		if err != nil {
			skipRow(c.log, DialectCard, line, colInstallment, row.Installment, err.Error())
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}
