package models

import (
	"time"

	"github.com/google/uuid"
)

type BankAccount struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID     uuid.UUID `gorm:"type:uuid;index" json:"company_id"`
	Name          string    `json:"name"`
	AccountNumber string    `json:"account_number"`
	Currency      string    `gorm:"size:3" json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}
