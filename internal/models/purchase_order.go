package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrder is read-only input to the document matcher. CounterpartyID
// is the single resolvable party on the order; upstream ingestion is
// responsible for populating it unambiguously.
type PurchaseOrder struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID      uuid.UUID       `gorm:"type:uuid;index" json:"company_id"`
	CounterpartyID *uuid.UUID      `gorm:"type:uuid;index" json:"counterparty_id"`
	OrderNumber    string          `gorm:"index" json:"order_number"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	Currency       string          `gorm:"size:3" json:"currency"`
	OrderDate      *time.Time      `json:"order_date"`
	CreatedAt      time.Time       `json:"created_at"`
}
