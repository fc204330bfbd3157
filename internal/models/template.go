package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecurringTemplate describes a recurring obligation or income. It drives
// both monthly materialization and the projection engine.
type RecurringTemplate struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Description    string          `gorm:"not null" json:"description"`
	Amount         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Type           TransactionType `gorm:"type:varchar(16);not null" json:"type"`
	CategoryID     *uint           `json:"category_id"`
	Category       *Category       `gorm:"constraint:OnDelete:SET NULL" json:"category,omitempty"`
	CategoryLegacy string          `json:"category_legacy"`
	IsActive       bool            `gorm:"not null" json:"is_active"`
	DayOfMonth     int             `gorm:"not null;default:1" json:"day_of_month"`
	StartDate      time.Time       `gorm:"type:date;not null" json:"start_date"`
	EndDate        *time.Time      `gorm:"type:date" json:"end_date"`
	SourceType     string          `gorm:"type:varchar(32);not null" json:"source_type"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BeforeCreate assigns a fresh id when none was set.
func (t *RecurringTemplate) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// AfterFind normalizes date columns to UTC.
func (t *RecurringTemplate) AfterFind(*gorm.DB) error {
	t.StartDate = t.StartDate.UTC()
	if t.EndDate != nil {
		end := t.EndDate.UTC()
		t.EndDate = &end
	}
	return nil
}

// ApplyDefaults fills unset optional fields and normalizes the amount sign.
func (t *RecurringTemplate) ApplyDefaults() {
	if t.DayOfMonth == 0 {
		t.DayOfMonth = 1
	}
	if t.SourceType == "" {
		t.SourceType = SourceAccount
	}
	t.Amount = NormalizeAmount(t.Type, t.Amount)
}

// Validate checks the fields a caller must supply.
func (t RecurringTemplate) Validate() error {
	if t.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}
	if t.DayOfMonth < 1 || t.DayOfMonth > 31 {
		return fmt.Errorf("day_of_month must be between 1 and 31, got %d", t.DayOfMonth)
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if t.EndDate != nil && t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("end_date precedes start_date")
	}
	return checkPolarity(t.Type, t.Amount)
}

// ActiveIn reports whether the template covers the given calendar month.
// Only (year, month) is compared; days are ignored on both bounds.
func (t RecurringTemplate) ActiveIn(year int, month time.Month) bool {
	key := year*12 + int(month) - 1
	start := t.StartDate.Year()*12 + int(t.StartDate.Month()) - 1
	if key < start {
		return false
	}
	if t.EndDate != nil {
		end := t.EndDate.Year()*12 + int(t.EndDate.Month()) - 1
		if key > end {
			return false
		}
	}
	return true
}
