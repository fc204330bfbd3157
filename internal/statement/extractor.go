package statement

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"fjacquet/cashflow/internal/logging"
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/parsererror"
	"fjacquet/cashflow/internal/textutils"
)

// Options tune a single extraction.
type Options struct {
	// Filename is recorded as provenance on every record.
	Filename string
	// ReferenceDate, when set, overrides the accounting month of every record.
	ReferenceDate *time.Time
}

// Result is the outcome of extracting one file.
type Result struct {
	Dialect      Dialect
	Headers      []string
	Transactions []models.Transaction
	// Skipped counts rows dropped because a date or amount did not parse.
	Skipped int
}

// dialectExtractor turns decoded rows of one layout into transactions.
type dialectExtractor interface {
	extract(rows *recordReader, opts Options) ([]models.Transaction, int, error)
}

// Extractor reads statement files. It is safe for concurrent use.
type Extractor struct {
	logger         logging.Logger
	delimiter      rune
	invoicePhrases []string
}

// NewExtractor builds an Extractor. invoicePhrases are matched
// case-insensitively against descriptions to flag card bill payments as
// transfers.
func NewExtractor(logger logging.Logger, delimiter rune, invoicePhrases []string) *Extractor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if delimiter == 0 {
		delimiter = ';'
	}
	return &Extractor{logger: logger, delimiter: delimiter, invoicePhrases: invoicePhrases}
}

// Extract detects the dialect of the CSV in r and returns its records. An
// unknown layout yields an empty result with DialectUnknown and no error;
// only unreadable CSV returns an error.
func (e *Extractor) Extract(r io.Reader, opts Options) (*Result, error) {
	records, err := readRecords(r, e.delimiter)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{Filename: opts.Filename, Msg: err.Error()}
	}
	if len(records) == 0 {
		return &Result{Dialect: DialectUnknown}, nil
	}

	result := &Result{Dialect: Detect(records[0]), Headers: records[0]}
	log := e.logger.WithFields(
		logging.F(logging.FieldFile, opts.Filename),
		logging.F(logging.FieldDialect, string(result.Dialect)),
	)

	var ex dialectExtractor
	switch result.Dialect {
	case DialectCard:
		ex = &cardExtractor{base: e, log: log}
	case DialectAccount:
		ex = &accountExtractor{base: e, log: log}
	default:
		log.Warn("Unrecognized statement headers", logging.F("headers", records[0]))
		return result, nil
	}

	txs, skipped, err := ex.extract(&recordReader{records: records}, opts)
	if err != nil {
		return nil, err
	}
	result.Transactions = txs
	result.Skipped = skipped

	log.Info("Statement extracted",
		logging.F(logging.FieldCount, len(txs)),
		logging.F(logging.FieldSkipped, skipped))
	return result, nil
}

// classify picks the type for a signed amount, promoting invoice payments to
// transfers.
func (e *Extractor) classify(description string, amount decimal.Decimal) models.TransactionType {
	if e.isInvoicePayment(description) {
		return models.TypeTransfer
	}
	if amount.IsNegative() {
		return models.TypeExpense
	}
	return models.TypeIncome
}

func (e *Extractor) isInvoicePayment(description string) bool {
	for _, phrase := range e.invoicePhrases {
		if textutils.ContainsFold(description, phrase) {
			return true
		}
	}
	return false
}

func decodeRows(rows *recordReader, out interface{}) error {
	if err := gocsv.UnmarshalCSV(rows, out); err != nil {
		return fmt.Errorf("failed to decode statement rows: %w", err)
	}
	return nil
}

func skipRow(log logging.Logger, dialect Dialect, row int, field, value, reason string) {
	err := &parsererror.ParseError{Dialect: string(dialect), Row: row, Field: field, Value: value, Err: fmt.Errorf("%s", reason)}
	log.Debug("Skipping statement row", logging.F(logging.FieldRow, row), logging.F(logging.FieldReason, err.Error()))
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
