// Package statement detects the layout of a bank or card CSV export and
// extracts its rows into canonical transactions.
package statement

import (
	"fjacquet/cashflow/internal/models"
	"fjacquet/cashflow/internal/textutils"
)

// Dialect identifies a statement layout.
type Dialect string

const (
	DialectUnknown Dialect = "unknown"
	DialectCard    Dialect = "card"
	DialectAccount Dialect = "account"
)

// SourceType is the source tag stamped on records of this dialect.
func (d Dialect) SourceType() string {
	switch d {
	case DialectCard:
		return models.SourceCard
	case DialectAccount:
		return models.SourceAccount
	}
	return ""
}

// Canonical column names after header folding.
const (
	colDate        = "Data"
	colMerchant    = "Estabelecimento"
	colCardholder  = "Portador"
	colAmount      = "Valor"
	colInstallment = "Parcela"
	colDescription = "Descricao"
	colEntry       = "Lancamento"
	colBalance     = "Saldo"
)

// canonicalColumns maps folded header spellings to the names the row
// structs are tagged with.
var canonicalColumns = map[string]string{
	"data":            colDate,
	"estabelecimento": colMerchant,
	"portador":        colCardholder,
	"valor":           colAmount,
	"parcela":         colInstallment,
	"descricao":       colDescription,
	"lancamento":      colEntry,
	"saldo":           colBalance,
}

// CanonicalHeader returns the canonical column name for a raw header, or
// the trimmed header itself when it is not a known column.
func CanonicalHeader(raw string) string {
	trimmed := textutils.CollapseSpaces(textutils.StripBOM(raw))
	if name, ok := canonicalColumns[textutils.Fold(trimmed)]; ok {
		return name
	}
	return trimmed
}

// Detect classifies a header row. Card statements carry a cardholder and an
// installment column; account statements carry a running balance with a
// description, or a date, entry and value triple.
func Detect(headers []string) Dialect {
	has := make(map[string]bool, len(headers))
	for _, h := range headers {
		has[CanonicalHeader(h)] = true
	}

	switch {
	case has[colCardholder] && has[colInstallment]:
		return DialectCard
	case has[colBalance] && has[colDescription]:
		return DialectAccount
	case has[colDate] && has[colEntry] && has[colAmount]:
		return DialectAccount
	}
	return DialectUnknown
}
