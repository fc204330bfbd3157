package statement

import (
	"fjacquet/cashflow/internal/currencyutils"
	"fjacquet/cashflow/internal/dateutils"
	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
)

// accountRow is one line of a checking account statement. Exports use
// either Descrição or Lançamento for the description column.
type accountRow struct {
	Date        string `csv:"Data"`
	Description string `csv:"Descricao"`
	Entry       string `csv:"Lancamento"`
	Amount      string `csv:"Valor"`
	Balance     string `csv:"Saldo"`
}

func (r accountRow) description() string {
	if d := trimmed(r.Description); d != "" {
		return d
	}
	return trimmed(r.Entry)
}

type accountExtractor struct {
	base *Extractor
	log  logging.Logger
}

// extract keeps the raw sign as the stored amount.
func (a *accountExtractor) extract(rows *recordReader, opts Options) ([]models.Transaction, int, error) {
	var decoded []accountRow
	if err := decodeRows(rows, &decoded); err != nil {
		return nil, 0, err
	}

	txs := make([]models.Transaction, 0, len(decoded))
	skipped := 0
	for i, row := range decoded {
		line := i + 2

		date, ok := dateutils.ParseStatementDate(row.Date)
		if !ok {
			skipRow(a.log, DialectAccount, line, colDate, row.Date, "unparseable date")
			skipped++
			continue
		}
		amount, ok := currencyutils.ParseAmount(row.Amount)
		if !ok {
			skipRow(a.log, DialectAccount, line, colAmount, row.Amount, "unparseable amount")
			skipped++
			continue
		}

		description := row.description()
		tx, err := models.NewTransactionBuilder().
			WithDate(date).
			WithReferenceDate(opts.ReferenceDate).
			WithDescription(description).
			WithAmount(amount).
			WithType(a.base.classify(description, amount)).
			WithSourceType(models.SourceAccount).
			WithSourceFile(opts.Filename).
			Build()
		if err != nil {
			skipRow(a.log, DialectAccount, line, colDescription, description, err.Error())
			skipped++
			continue
		}
		txs = append(txs, tx)
	}
	return txs, skipped, nil
}
