package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Match type values for ThreeWayMatch.MatchType.
const (
	MatchType2Way = "2-way"
	MatchType3Way = "3-way"
)

// Match status values for ThreeWayMatch.Status. Each matcher run recomputes
// the status fresh from current data; there are no transitions.
const (
	ThreeWayStatusPerfect  = "perfect"
	ThreeWayStatusPartial  = "partial"
	ThreeWayStatusMismatch = "mismatch"
)

// ThreeWayMatch holds the outcome of matching an invoice against its
// purchase order and (optionally) delivery note. One row per invoice.
type ThreeWayMatch struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID         uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"invoice_id"`
	PurchaseOrderID   uuid.UUID       `gorm:"type:uuid;index" json:"purchase_order_id"`
	DeliveryNoteID    *uuid.UUID      `gorm:"type:uuid" json:"delivery_note_id"`
	CounterpartyID    *uuid.UUID      `gorm:"type:uuid;index" json:"counterparty_id"`
	MatchType         string          `json:"match_type"`
	Status            string          `gorm:"index" json:"status"`
	AmountDiscrepancy decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount_discrepancy"`
	Notes             string          `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
