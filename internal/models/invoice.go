package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment status values for Invoice.Status.
const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// Document match status values for Invoice.MatchStatus, derived from which
// of PurchaseOrderID / DeliveryNoteID are populated.
const (
	MatchStatusUnmatched   = "unmatched"
	MatchStatusPOMatched   = "po_matched"
	MatchStatusDNMatched   = "dn_matched"
	MatchStatusFullMatched = "full_matched"
)

type Invoice struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       uuid.UUID        `gorm:"type:uuid;index" json:"company_id"`
	CustomerID      *uuid.UUID       `gorm:"type:uuid;index" json:"customer_id"`
	InvoiceNumber   string           `gorm:"uniqueIndex" json:"invoice_number"`
	Amount          *decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	Currency        string           `gorm:"size:3" json:"currency"`
	InvoiceDate     *time.Time       `json:"invoice_date"`
	DueDate         *time.Time       `json:"due_date"`
	Status          string           `gorm:"index;default:pending" json:"status"`
	PaidAt          *time.Time       `json:"paid_at"`
	PurchaseOrderID *uuid.UUID       `gorm:"type:uuid;index" json:"purchase_order_id"`
	DeliveryNoteID  *uuid.UUID       `gorm:"type:uuid" json:"delivery_note_id"`
	MatchStatus     string           `gorm:"index;default:unmatched" json:"match_status"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// DeriveMatchStatus projects the match status purely from which document
// links are populated. Idempotent by construction.
func (inv *Invoice) DeriveMatchStatus() string {
	switch {
	case inv.PurchaseOrderID != nil && inv.DeliveryNoteID != nil:
		return MatchStatusFullMatched
	case inv.PurchaseOrderID != nil:
		return MatchStatusPOMatched
	case inv.DeliveryNoteID != nil:
		return MatchStatusDNMatched
	default:
		return MatchStatusUnmatched
	}
}
