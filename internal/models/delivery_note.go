package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DeliveryNote is read-only input to the document matcher. Amount may be
// absent on the row itself and carried instead inside ExtractedData, the
// raw output of the document-extraction pipeline.
type DeliveryNote struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       uuid.UUID        `gorm:"type:uuid;index" json:"company_id"`
	CustomerID      *uuid.UUID       `gorm:"type:uuid" json:"customer_id"`
	PurchaseOrderID *uuid.UUID       `gorm:"type:uuid;index" json:"purchase_order_id"`
	NoteNumber      string           `json:"note_number"`
	Amount          *decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	ExtractedData   datatypes.JSON   `json:"extracted_data"`
	DeliveredAt     *time.Time       `json:"delivered_at"`
	CreatedAt       time.Time        `json:"created_at"`
}
