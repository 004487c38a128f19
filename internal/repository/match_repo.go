package repository

import (
	"context"
	"errors"
	"time"

	"invoice-matching-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository owns the write side of both matchers: the atomic payment
// match apply, the keyed upserts for three-way matches and anomalies, and
// the match-run bookkeeping.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ApplyPaymentMatch links a bank transaction to an invoice in one database
// transaction: the transaction row is claimed (guarding against a concurrent
// match on the same row), the invoice is marked paid with the backdated
// timestamp, and the audit row is inserted. If any step fails nothing is
// applied.
func (r *MatchRepository) ApplyPaymentMatch(ctx context.Context, invoiceID, transactionID uuid.UUID, paidAt time.Time, audit *models.MatchAuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.BankTransaction{}).
			Where("id = ? AND matched_invoice_id IS NULL", transactionID).
			Updates(map[string]interface{}{
				"matched_invoice_id": invoiceID,
				"is_reconciled":      true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyMatched
		}

		if err := tx.Model(&models.Invoice{}).
			Where("id = ?", invoiceID).
			Updates(map[string]interface{}{
				"status":  models.InvoiceStatusPaid,
				"paid_at": paidAt,
			}).Error; err != nil {
			return err
		}

		if audit.ID == uuid.Nil {
			audit.ID = uuid.New()
		}
		return tx.Create(audit).Error
	})
}

// UpsertThreeWayMatch inserts or refreshes the match row keyed by invoice ID.
func (r *MatchRepository) UpsertThreeWayMatch(ctx context.Context, m *models.ThreeWayMatch) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "invoice_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"purchase_order_id", "delivery_note_id", "counterparty_id",
			"match_type", "status", "amount_discrepancy", "notes", "updated_at",
		}),
	}).Create(m).Error
}

// UpsertOpenAnomaly inserts or refreshes the open anomaly for an invoice.
// Keyed on (invoice_id, status=open) so a re-run never duplicates it.
func (r *MatchRepository) UpsertOpenAnomaly(ctx context.Context, a *models.Anomaly) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Anomaly
		err := tx.Where("invoice_id = ? AND status = ?", a.InvoiceID, models.AnomalyStatusOpen).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if a.ID == uuid.Nil {
				a.ID = uuid.New()
			}
			a.Status = models.AnomalyStatusOpen
			return tx.Create(a).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&existing).Updates(map[string]interface{}{
			"severity":           a.Severity,
			"discrepancy_amount": a.DiscrepancyAmount,
			"description":        a.Description,
		}).Error
	})
}

// CreateRun inserts a running MatchRun row for a three-way batch.
func (r *MatchRepository) CreateRun(ctx context.Context, companyID uuid.UUID, startedAt time.Time) (*models.MatchRun, error) {
	run := &models.MatchRun{
		ID:        uuid.New(),
		CompanyID: companyID,
		Status:    "running",
		StartedAt: startedAt,
	}
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteRun persists the final counts of a three-way batch.
func (r *MatchRepository) CompleteRun(ctx context.Context, run *models.MatchRun) error {
	now := time.Now()
	run.Status = "completed"
	run.CompletedAt = &now
	return r.db.WithContext(ctx).
		Model(&models.MatchRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":            run.Status,
			"invoices_seen":     run.InvoicesSeen,
			"matches_upserted":  run.MatchesUpserted,
			"anomalies_created": run.AnomaliesCreated,
			"skipped_count":     run.SkippedCount,
			"failed_count":      run.FailedCount,
			"completed_at":      run.CompletedAt,
		}).Error
}

// ListMatchesByCompany returns the three-way match rows for a company's
// invoices, newest first.
func (r *MatchRepository) ListMatchesByCompany(ctx context.Context, companyID uuid.UUID) ([]models.ThreeWayMatch, error) {
	var matches []models.ThreeWayMatch
	err := r.db.WithContext(ctx).
		Joins("JOIN invoices ON invoices.id = three_way_matches.invoice_id").
		Where("invoices.company_id = ?", companyID).
		Order("three_way_matches.updated_at DESC").
		Find(&matches).Error
	return matches, err
}

// ListAnomaliesByCompany returns a company's anomalies, optionally filtered
// by status, newest first.
func (r *MatchRepository) ListAnomaliesByCompany(ctx context.Context, companyID uuid.UUID, status string) ([]models.Anomaly, error) {
	var anomalies []models.Anomaly
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("updated_at DESC").Find(&anomalies).Error
	return anomalies, err
}
