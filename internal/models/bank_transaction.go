package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction values for BankTransaction.Direction.
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// BankTransaction is created by the upstream bank-feed ingestion and mutated
// only by the payment matcher. The unique index on MatchedInvoiceID enforces
// that an invoice is linked to at most one transaction.
type BankTransaction struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BankAccountID    uuid.UUID       `gorm:"type:uuid;index" json:"bank_account_id"`
	TransactionDate  time.Time       `gorm:"index" json:"transaction_date"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	Direction        string          `gorm:"index" json:"direction"`
	ReferenceNumber  string          `json:"reference_number"`
	MatchedInvoiceID *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"matched_invoice_id"`
	IsReconciled     bool            `gorm:"index" json:"is_reconciled"`
	CreatedAt        time.Time       `json:"created_at"`
}
