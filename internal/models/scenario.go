package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Scenario is a named set of hypothetical cash-flow items overlaid on a
// projection. Scenarios never produce Transaction records.
type Scenario struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`
	Description string         `json:"description"`
	Items       []ScenarioItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ScenarioItem is either recurring from StartDate onwards or a finite run of
// Installments monthly charges starting at StartDate.
type ScenarioItem struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ScenarioID   uint            `gorm:"index;not null" json:"scenario_id"`
	Description  string          `gorm:"not null" json:"description"`
	Amount       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Type         TransactionType `gorm:"type:varchar(16);not null" json:"type"`
	StartDate    time.Time       `gorm:"type:date;not null" json:"start_date"`
	Installments int             `gorm:"not null;default:1" json:"installments"`
	IsRecurring  bool            `gorm:"not null;default:false" json:"is_recurring"`
	SourceType   string          `gorm:"type:varchar(32);not null" json:"source_type"`
}

func (i *ScenarioItem) AfterFind(*gorm.DB) error {
	i.StartDate = i.StartDate.UTC()
	return nil
}

// ApplyDefaults fills unset optional fields and normalizes the amount sign.
func (i *ScenarioItem) ApplyDefaults() {
	if i.Installments == 0 {
		i.Installments = 1
	}
	if i.SourceType == "" {
		i.SourceType = SourceManual
	}
	i.Amount = NormalizeAmount(i.Type, i.Amount)
}

// Validate checks the fields a caller must supply.
func (i ScenarioItem) Validate() error {
	if i.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !i.Type.Valid() {
		return fmt.Errorf("unknown transaction type %q", i.Type)
	}
	if i.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if i.Installments < 1 {
		return fmt.Errorf("installments must be at least 1, got %d", i.Installments)
	}
	return nil
}
