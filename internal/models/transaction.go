package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Transaction is the canonical ledger record.
//
// Amount follows the sign convention positive = inflow, negative = outflow.
// Once imported only the categorization and verification fields change.
type Transaction struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Date               time.Time       `gorm:"type:date;not null;index" json:"date"`
	ReferenceDate      time.Time       `gorm:"type:date;not null;index" json:"reference_date"`
	Description        string          `gorm:"not null" json:"description"`
	Amount             decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Type               TransactionType `gorm:"type:varchar(16);not null" json:"type"`
	SourceType         string          `gorm:"type:varchar(32);not null;index" json:"source_type"`
	CategoryID         *uint           `gorm:"index" json:"category_id"`
	Category           *Category       `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	CategoryLegacy     string          `json:"category_legacy"`
	ManualTag          string          `json:"manual_tag"`
	IsRecurring        bool            `gorm:"not null;default:false" json:"is_recurring"`
	IsVerified         bool            `gorm:"not null;default:false;index" json:"is_verified"`
	InstallmentCurrent *int            `json:"installment_current"`
	InstallmentTotal   *int            `json:"installment_total"`
	Cardholder         *string         `json:"cardholder"`
	UniqueHash         *string         `gorm:"type:varchar(64);uniqueIndex" json:"-"`
	RawData            datatypes.JSON  `json:"raw_data,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// BeforeCreate assigns a fresh id when none was set.
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// AfterFind normalizes date columns to UTC; drivers differ in the location
// they attach when scanning.
func (t *Transaction) AfterFind(*gorm.DB) error {
	t.Date = t.Date.UTC()
	t.ReferenceDate = t.ReferenceDate.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return nil
}

// CategoryName resolves the display category of the record.
func (t Transaction) CategoryName() string {
	return ResolveCategoryName(t.Category, t.CategoryLegacy)
}

// SourceFilename returns the imported file name recorded in RawData, if any.
func (t Transaction) SourceFilename() string {
	if len(t.RawData) == 0 {
		return ""
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(t.RawData, &raw); err != nil {
		return ""
	}
	name, _ := raw[RawDataSourceFilename].(string)
	return name
}

// Validate checks the amount/type and installment invariants.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	if err := checkPolarity(t.Type, t.Amount); err != nil {
		return err
	}
	if t.InstallmentCurrent != nil && t.InstallmentTotal != nil && *t.InstallmentCurrent > *t.InstallmentTotal {
		return fmt.Errorf("installment %d exceeds total %d", *t.InstallmentCurrent, *t.InstallmentTotal)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	return nil
}

// HasInstallmentPlan reports whether the record is part of a multi-charge
// purchase with a known position.
func (t Transaction) HasInstallmentPlan() bool {
	return t.InstallmentTotal != nil && *t.InstallmentTotal > 1 && t.InstallmentCurrent != nil
}

// SourceFileRawData builds the provenance payload for an imported record.
func SourceFileRawData(filename string) datatypes.JSON {
	b, _ := json.Marshal(map[string]string{RawDataSourceFilename: filename})
	return datatypes.JSON(b)
}

// NormalizeAmount applies the sign convention for manually supplied
// amounts: expenses become negative, incomes become non-negative and
// transfers keep their sign.
func NormalizeAmount(typ TransactionType, amount decimal.Decimal) decimal.Decimal {
	switch typ {
	case TypeExpense:
		if amount.IsPositive() {
			return amount.Neg()
		}
	case TypeIncome:
		return amount.Abs()
	}
	return amount
}

func checkPolarity(typ TransactionType, amount decimal.Decimal) error {
	switch {
	case typ == TypeExpense && amount.IsPositive():
		return fmt.Errorf("expense amount must not be positive, got %s", amount)
	case typ == TypeIncome && amount.IsNegative():
		return fmt.Errorf("income amount must not be negative, got %s", amount)
	}
	return nil
}

// HistoryEntry is a past verified, categorized record used as context for
// predictions.
type HistoryEntry struct {
	Description string
	Amount      decimal.Decimal
	Category    string
}

// ReconciliationCandidate is a manually entered record that probably
// represents the same event as a freshly imported one.
type ReconciliationCandidate struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category_legacy"`
	MatchedID   uuid.UUID       `json:"matched_transaction_id"`
}
