package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Severity values for Anomaly.Severity.
const (
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Status values for Anomaly.Status. The matcher only ever opens or refreshes
// anomalies; closing them is a reviewer action outside this service.
const (
	AnomalyStatusOpen   = "open"
	AnomalyStatusClosed = "closed"
)

// Anomaly records a discrepancy between matched documents that needs human
// review. At most one open anomaly exists per invoice; re-running the
// matcher refreshes it instead of duplicating it.
type Anomaly struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID         uuid.UUID       `gorm:"type:uuid;index:idx_anomaly_invoice_status" json:"invoice_id"`
	CompanyID         uuid.UUID       `gorm:"type:uuid;index" json:"company_id"`
	Severity          string          `gorm:"index" json:"severity"`
	DiscrepancyAmount decimal.Decimal `gorm:"type:decimal(20,2)" json:"discrepancy_amount"`
	Description       string          `gorm:"type:text" json:"description"`
	Status            string          `gorm:"index:idx_anomaly_invoice_status;default:open" json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
