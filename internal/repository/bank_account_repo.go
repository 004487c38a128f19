package repository

import (
	"context"

	"invoice-matching-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

// ListCompanyAccountIDs returns the IDs of all bank accounts owned by a company.
func (r *BankAccountRepository) ListCompanyAccountIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.BankAccount{}).
		Where("company_id = ?", companyID).
		Pluck("id", &ids).Error
	return ids, err
}
