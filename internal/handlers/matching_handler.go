package handler

import (
	"context"
	"errors"
	"net/http"

	"invoice-matching-backend/internal/models"
	"invoice-matching-backend/internal/repository"
	"invoice-matching-backend/internal/services/payment"
	"invoice-matching-backend/internal/services/threeway"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentMatcher is the payment-matching operation the handler exposes.
type PaymentMatcher interface {
	MatchInvoicePayment(ctx context.Context, invoiceID uuid.UUID) (*payment.Outcome, error)
}

// DocumentMatcher is the three-way matching operation the handler exposes.
type DocumentMatcher interface {
	RunThreeWayMatch(ctx context.Context, companyID uuid.UUID) (*threeway.Summary, error)
}

// MatchReader serves the thin read endpoints over match and anomaly rows.
type MatchReader interface {
	ListMatchesByCompany(ctx context.Context, companyID uuid.UUID) ([]models.ThreeWayMatch, error)
	ListAnomaliesByCompany(ctx context.Context, companyID uuid.UUID, status string) ([]models.Anomaly, error)
}

type MatchingHandler struct {
	payments  PaymentMatcher
	documents DocumentMatcher
	reader    MatchReader
}

func NewMatchingHandler(payments PaymentMatcher, documents DocumentMatcher, reader MatchReader) *MatchingHandler {
	return &MatchingHandler{payments: payments, documents: documents, reader: reader}
}

// MatchInvoicePayment runs the payment matcher for a single invoice.
func (h *MatchingHandler) MatchInvoicePayment(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}

	outcome, err := h.payments.MatchInvoicePayment(c.Request.Context(), invoiceID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		case errors.Is(err, payment.ErrInvalidInvoiceState):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	switch outcome.Code {
	case payment.OutcomeAlreadyPaid:
		c.JSON(http.StatusOK, gin.H{
			"matched":      true,
			"already_paid": true,
			"message":      outcome.Message,
		})
	case payment.OutcomeMatched:
		c.JSON(http.StatusOK, gin.H{
			"matched":       true,
			"updated":       true,
			"transaction":   outcome.Transaction,
			"paid_at":       outcome.PaidAt,
			"match_details": outcome.Details,
			"message":       outcome.Message,
		})
	default: // no_match, no_accounts
		c.JSON(http.StatusOK, gin.H{
			"matched":     false,
			"reason":      outcome.Code,
			"diagnostics": outcome.Diagnostics,
			"message":     outcome.Message,
		})
	}
}

// RunThreeWayMatch runs the document matcher for every eligible invoice of
// a company.
func (h *MatchingHandler) RunThreeWayMatch(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company ID"})
		return
	}

	summary, err := h.documents.RunThreeWayMatch(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListThreeWayMatches lists a company's three-way match rows.
func (h *MatchingHandler) ListThreeWayMatches(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company ID"})
		return
	}

	matches, err := h.reader.ListMatchesByCompany(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": matches, "count": len(matches)})
}

// ListAnomalies lists a company's anomalies, optionally filtered by status.
func (h *MatchingHandler) ListAnomalies(c *gin.Context) {
	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid company ID"})
		return
	}

	status := c.Query("status")
	if status != "" && status != models.AnomalyStatusOpen && status != models.AnomalyStatusClosed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
		return
	}

	anomalies, err := h.reader.ListAnomaliesByCompany(c.Request.Context(), companyID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": anomalies, "count": len(anomalies)})
}
