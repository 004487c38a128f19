package repository

import (
	"context"

	"invoice-matching-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeliveryNoteRepository struct {
	db *gorm.DB
}

func NewDeliveryNoteRepository(db *gorm.DB) *DeliveryNoteRepository {
	return &DeliveryNoteRepository{db: db}
}

func (r *DeliveryNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DeliveryNote, error) {
	var dn models.DeliveryNote
	err := r.db.WithContext(ctx).First(&dn, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &dn, nil
}
