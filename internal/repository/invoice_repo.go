package repository

import (
	"context"

	"invoice-matching-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// GetByID fetches a single invoice by ID.
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

// ListWithPurchaseOrder returns all invoices of a company that reference a
// purchase order, the eligible set for three-way matching.
func (r *InvoiceRepository) ListWithPurchaseOrder(ctx context.Context, companyID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND purchase_order_id IS NOT NULL", companyID).
		Order("created_at ASC").
		Find(&invoices).Error
	return invoices, err
}

// UpdateMatchStatus persists the derived document match status.
func (r *InvoiceRepository) UpdateMatchStatus(ctx context.Context, invoiceID uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", invoiceID).
		Update("match_status", status).Error
}
