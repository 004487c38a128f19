package threeway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoice-matching-backend/internal/models"
	"invoice-matching-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Classification thresholds.
var (
	// Amounts closer than one cent are the same amount.
	centTolerance = decimal.NewFromFloat(0.01)

	// Deviations beyond 10% of the PO amount are mismatches.
	mismatchRate = decimal.NewFromFloat(0.10)
)

// Per-invoice processing budget so one bad record cannot stall the batch.
const perInvoiceTimeout = 5 * time.Second

// InvoiceStore is the invoice side the matcher needs.
type InvoiceStore interface {
	ListWithPurchaseOrder(ctx context.Context, companyID uuid.UUID) ([]models.Invoice, error)
	UpdateMatchStatus(ctx context.Context, invoiceID uuid.UUID, status string) error
}

// PurchaseOrderStore is a point lookup for purchase orders.
type PurchaseOrderStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
}

// DeliveryNoteStore is a point lookup for delivery notes.
type DeliveryNoteStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.DeliveryNote, error)
}

// MatchStore is the write side: keyed upserts and run bookkeeping.
type MatchStore interface {
	UpsertThreeWayMatch(ctx context.Context, m *models.ThreeWayMatch) error
	UpsertOpenAnomaly(ctx context.Context, a *models.Anomaly) error
	CreateRun(ctx context.Context, companyID uuid.UUID, startedAt time.Time) (*models.MatchRun, error)
	CompleteRun(ctx context.Context, run *models.MatchRun) error
}

// ItemError records a per-invoice failure that did not abort the batch.
type ItemError struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Error     string    `json:"error"`
}

// Summary is the result of one three-way matching batch. Counts reflect
// successful upserts only.
type Summary struct {
	MatchesUpserted  int         `json:"matches_created"`
	AnomaliesCreated int         `json:"anomalies_created"`
	InvoicesSeen     int         `json:"invoices_seen"`
	Skipped          int         `json:"skipped"`
	Errors           []ItemError `json:"errors,omitempty"`
}

// Matcher reconciles purchase orders, delivery notes, and invoices.
type Matcher struct {
	invoices InvoiceStore
	orders   PurchaseOrderStore
	notes    DeliveryNoteStore
	matches  MatchStore
	log      *logrus.Entry
	now      func() time.Time
}

func NewMatcher(invoices InvoiceStore, orders PurchaseOrderStore, notes DeliveryNoteStore, matches MatchStore) *Matcher {
	return &Matcher{
		invoices: invoices,
		orders:   orders,
		notes:    notes,
		matches:  matches,
		log:      logrus.WithField("component", "threeway_matcher"),
		now:      time.Now,
	}
}

// RunThreeWayMatch processes every invoice of the company that references a
// purchase order. Per-invoice failures are accumulated in the summary and
// never abort the batch. The matcher is stateless across runs: each run
// recomputes match status fresh from current data, and upserts are keyed so
// re-runs refresh rather than duplicate.
func (m *Matcher) RunThreeWayMatch(ctx context.Context, companyID uuid.UUID) (*Summary, error) {
	invoices, err := m.invoices.ListWithPurchaseOrder(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	run, err := m.matches.CreateRun(ctx, companyID, m.now())
	if err != nil {
		// Bookkeeping only; the batch itself still runs.
		m.log.WithError(err).Warn("could not record match run")
		run = nil
	}

	summary := &Summary{}
	for i := range invoices {
		inv := &invoices[i]
		summary.InvoicesSeen++

		ictx, cancel := context.WithTimeout(ctx, perInvoiceTimeout)
		res, err := m.matchInvoice(ictx, inv)
		cancel()

		if err != nil {
			summary.Errors = append(summary.Errors, ItemError{InvoiceID: inv.ID, Error: err.Error()})
			m.log.WithError(err).WithField("invoice_id", inv.ID).Warn("invoice failed, batch continues")
			continue
		}
		if res.skipped {
			summary.Skipped++
			continue
		}
		summary.MatchesUpserted++
		if res.anomaly {
			summary.AnomaliesCreated++
		}
	}

	if run != nil {
		run.InvoicesSeen = summary.InvoicesSeen
		run.MatchesUpserted = summary.MatchesUpserted
		run.AnomaliesCreated = summary.AnomaliesCreated
		run.SkippedCount = summary.Skipped
		run.FailedCount = len(summary.Errors)
		if err := m.matches.CompleteRun(ctx, run); err != nil {
			m.log.WithError(err).Warn("could not complete match run record")
		}
	}

	m.log.WithFields(logrus.Fields{
		"company_id": companyID,
		"matches":    summary.MatchesUpserted,
		"anomalies":  summary.AnomaliesCreated,
		"skipped":    summary.Skipped,
		"failed":     len(summary.Errors),
	}).Info("three-way match run completed")

	return summary, nil
}

type itemResult struct {
	skipped bool
	anomaly bool
}

func (m *Matcher) matchInvoice(ctx context.Context, inv *models.Invoice) (itemResult, error) {
	po, err := m.orders.GetByID(ctx, *inv.PurchaseOrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Dangling PO reference is tolerated, not fatal.
			m.log.WithField("invoice_id", inv.ID).Warn("purchase order not found, skipping invoice")
			return itemResult{skipped: true}, nil
		}
		return itemResult{}, fmt.Errorf("loading purchase order: %w", err)
	}

	counterparty := inv.CustomerID
	if counterparty == nil {
		counterparty = po.CounterpartyID
	}
	if counterparty == nil {
		m.log.WithField("invoice_id", inv.ID).Warn("no resolvable counterparty, skipping invoice")
		return itemResult{skipped: true}, nil
	}

	if inv.Amount == nil {
		// Extraction has not produced an amount yet; nothing to compare.
		m.log.WithField("invoice_id", inv.ID).Warn("invoice has no amount, skipping invoice")
		return itemResult{skipped: true}, nil
	}

	var dn *models.DeliveryNote
	var dnAmount *decimal.Decimal
	if inv.DeliveryNoteID != nil {
		dn, err = m.notes.GetByID(ctx, *inv.DeliveryNoteID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return itemResult{}, fmt.Errorf("loading delivery note: %w", err)
			}
			dn = nil
		}
		if dn != nil {
			dnAmount = ResolveAmount(dn)
		}
	}

	delta := inv.Amount.Sub(po.Amount)
	status, severity := classify(po.Amount, delta, dnAmount)

	matchType := models.MatchType2Way
	if dn != nil {
		matchType = models.MatchType3Way
	}

	var notes string
	if status != models.ThreeWayStatusPerfect {
		notes = discrepancyNote(po.Amount, *inv.Amount, dnAmount)
	}
	if dn != nil && dnAmount == nil {
		notes = appendNote(notes, "delivery note amount could not be resolved")
	}

	match := &models.ThreeWayMatch{
		InvoiceID:         inv.ID,
		PurchaseOrderID:   po.ID,
		DeliveryNoteID:    inv.DeliveryNoteID,
		CounterpartyID:    counterparty,
		MatchType:         matchType,
		Status:            status,
		AmountDiscrepancy: delta,
		Notes:             notes,
	}
	if err := m.matches.UpsertThreeWayMatch(ctx, match); err != nil {
		return itemResult{}, fmt.Errorf("upserting match: %w", err)
	}

	anomaly := false
	if status != models.ThreeWayStatusPerfect {
		a := &models.Anomaly{
			InvoiceID:         inv.ID,
			CompanyID:         inv.CompanyID,
			Severity:          severity,
			DiscrepancyAmount: delta,
			Description:       discrepancyNote(po.Amount, *inv.Amount, dnAmount),
			Status:            models.AnomalyStatusOpen,
		}
		if err := m.matches.UpsertOpenAnomaly(ctx, a); err != nil {
			return itemResult{}, fmt.Errorf("upserting anomaly: %w", err)
		}
		anomaly = true
	}

	// Derived projection from the populated links; idempotent.
	if err := m.invoices.UpdateMatchStatus(ctx, inv.ID, inv.DeriveMatchStatus()); err != nil {
		return itemResult{}, fmt.Errorf("updating invoice match status: %w", err)
	}

	return itemResult{anomaly: anomaly}, nil
}

// classify grades the match. Perfect requires the invoice (and the delivery
// note, when its amount is known) to agree with the PO to the cent. Anything
// deviating more than 10% of the PO amount is a mismatch, the rest partial.
func classify(poAmount, delta decimal.Decimal, dnAmount *decimal.Decimal) (status, severity string) {
	perfect := delta.Abs().LessThan(centTolerance)
	if perfect && dnAmount != nil {
		perfect = dnAmount.Sub(poAmount).Abs().LessThan(centTolerance)
	}
	if perfect {
		return models.ThreeWayStatusPerfect, ""
	}
	if delta.Abs().GreaterThan(poAmount.Abs().Mul(mismatchRate)) {
		return models.ThreeWayStatusMismatch, models.SeverityHigh
	}
	return models.ThreeWayStatusPartial, models.SeverityMedium
}

func discrepancyNote(po, inv decimal.Decimal, dn *decimal.Decimal) string {
	if dn != nil {
		return fmt.Sprintf("PO %s vs Invoice %s vs DN %s", po.StringFixed(2), inv.StringFixed(2), dn.StringFixed(2))
	}
	return fmt.Sprintf("PO %s vs Invoice %s (no delivery note amount)", po.StringFixed(2), inv.StringFixed(2))
}

func appendNote(existing, extra string) string {
	if existing == "" {
		return extra
	}
	return existing + "; " + extra
}
