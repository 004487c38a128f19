package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchAuditLog records an applied payment match. Written in the same
// database transaction as the invoice/transaction updates.
type MatchAuditLog struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID        uuid.UUID       `gorm:"type:uuid;index" json:"invoice_id"`
	TransactionID    uuid.UUID       `gorm:"type:uuid;index" json:"transaction_id"`
	Action           string          `json:"action"`
	MatchScore       float64         `json:"match_score"`
	AmountDifference decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount_difference"`
	DaysDifference   int             `json:"days_difference"`
	PerformedBy      string          `json:"performed_by"`
	CreatedAt        time.Time       `json:"created_at"`
}
