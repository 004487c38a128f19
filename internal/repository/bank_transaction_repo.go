package repository

import (
	"context"
	"time"

	"invoice-matching-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BankTransactionRepository struct {
	db *gorm.DB
}

func NewBankTransactionRepository(db *gorm.DB) *BankTransactionRepository {
	return &BankTransactionRepository{db: db}
}

// ListUnmatchedInRange returns transactions of the given accounts that have
// no matched invoice and fall inside [from, to], newest first. The ordering
// fixes enumeration (and therefore tie-breaking) for the matcher.
func (r *BankTransactionRepository) ListUnmatchedInRange(ctx context.Context, accountIDs []uuid.UUID, from, to time.Time) ([]models.BankTransaction, error) {
	var txs []models.BankTransaction
	err := r.db.WithContext(ctx).
		Where("bank_account_id IN ?", accountIDs).
		Where("matched_invoice_id IS NULL").
		Where("transaction_date >= ? AND transaction_date <= ?", from, to).
		Order("transaction_date DESC").
		Find(&txs).Error
	return txs, err
}
