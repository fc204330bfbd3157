package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionBuilder provides a fluent API for constructing transactions.
// The first error encountered sticks and is returned by Build.
type TransactionBuilder struct {
	tx               Transaction
	err              error
	referenceDateSet bool
}

// NewTransactionBuilder creates a builder for a manual, uncategorized record.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{
		tx: Transaction{
			Amount:         decimal.Zero,
			SourceType:     SourceManual,
			CategoryLegacy: CategoryUncategorized,
		},
	}
}

// WithDate sets the statement date, truncated to UTC midnight.
func (b *TransactionBuilder) WithDate(date time.Time) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	if date.IsZero() {
		b.err = errors.New("date cannot be zero")
		return b
	}
	b.tx.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return b
}

// WithReferenceDate overrides the accounting month. A nil value keeps the
// default, the first day of the statement date's month.
func (b *TransactionBuilder) WithReferenceDate(ref *time.Time) *TransactionBuilder {
	if b.err != nil || ref == nil {
		return b
	}
	b.tx.ReferenceDate = time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	b.referenceDateSet = true
	return b
}

func (b *TransactionBuilder) WithDescription(description string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Description = description
	return b
}

// WithAmount sets the signed amount as is.
func (b *TransactionBuilder) WithAmount(amount decimal.Decimal) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Amount = amount
	return b
}

func (b *TransactionBuilder) WithType(typ TransactionType) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.Type = typ
	return b
}

func (b *TransactionBuilder) WithSourceType(source string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.SourceType = source
	return b
}

// WithInstallment records the position in a multi-charge purchase.
func (b *TransactionBuilder) WithInstallment(current, total int) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.InstallmentCurrent = &current
	b.tx.InstallmentTotal = &total
	b.tx.IsRecurring = total > 1
	return b
}

func (b *TransactionBuilder) WithCardholder(name string) *TransactionBuilder {
	if b.err != nil || name == "" {
		return b
	}
	b.tx.Cardholder = &name
	return b
}

func (b *TransactionBuilder) WithCategory(category *Category) *TransactionBuilder {
	if b.err != nil || category == nil {
		return b
	}
	b.tx.CategoryID = &category.ID
	b.tx.Category = category
	b.tx.CategoryLegacy = category.Name
	return b
}

func (b *TransactionBuilder) WithCategoryLegacy(name string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.CategoryLegacy = name
	return b
}

func (b *TransactionBuilder) AsRecurring() *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.IsRecurring = true
	return b
}

func (b *TransactionBuilder) AsVerified() *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.IsVerified = true
	return b
}

// WithSourceFile stores the imported file name as provenance.
func (b *TransactionBuilder) WithSourceFile(filename string) *TransactionBuilder {
	if b.err != nil {
		return b
	}
	b.tx.RawData = SourceFileRawData(filename)
	return b
}

// Build validates and returns the transaction.
func (b *TransactionBuilder) Build() (Transaction, error) {
	if b.err != nil {
		return Transaction{}, b.err
	}
	if !b.referenceDateSet && !b.tx.Date.IsZero() {
		b.tx.ReferenceDate = time.Date(b.tx.Date.Year(), b.tx.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if err := b.tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return b.tx, nil
}
