package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchRun records one three-way matching batch for a company.
type MatchRun struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;index" json:"company_id"`
	Status           string     `json:"status"`
	InvoicesSeen     int        `json:"invoices_seen"`
	MatchesUpserted  int        `json:"matches_upserted"`
	AnomaliesCreated int        `json:"anomalies_created"`
	SkippedCount     int        `json:"skipped_count"`
	FailedCount      int        `json:"failed_count"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
}
