package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoice-matching-backend/internal/models"
	"invoice-matching-backend/internal/services/matching"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ErrInvalidInvoiceState marks invoices that cannot be matched until the
// upstream data is corrected (missing amount or invoice date).
var ErrInvalidInvoiceState = errors.New("invoice is not matchable")

// InvoiceStore is the invoice read side the matcher needs.
type InvoiceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
}

// AccountStore resolves the bank accounts owned by a company.
type AccountStore interface {
	ListCompanyAccountIDs(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
}

// TransactionStore fetches candidate transactions, newest first.
type TransactionStore interface {
	ListUnmatchedInRange(ctx context.Context, accountIDs []uuid.UUID, from, to time.Time) ([]models.BankTransaction, error)
}

// MatchWriter applies the invoice/transaction updates as one unit.
type MatchWriter interface {
	ApplyPaymentMatch(ctx context.Context, invoiceID, transactionID uuid.UUID, paidAt time.Time, audit *models.MatchAuditLog) error
}

// OutcomeCode classifies the result of a payment match attempt. All four
// values are successful outcomes, not errors.
type OutcomeCode string

const (
	OutcomeMatched     OutcomeCode = "matched"
	OutcomeAlreadyPaid OutcomeCode = "already_paid"
	OutcomeNoAccounts  OutcomeCode = "no_accounts"
	OutcomeNoMatch     OutcomeCode = "no_match"
)

// Diagnostics explains a NoMatch outcome: how many candidates were fetched
// and where they fell out of the funnel.
type Diagnostics struct {
	CandidatesSeen  int `json:"candidates_seen"`
	CreditsSeen     int `json:"credits_seen"`
	AmountQualified int `json:"amount_qualified"`
}

// Details describes the selected candidate.
type Details struct {
	AmountDifference decimal.Decimal `json:"amount_difference"`
	DaysDifference   int             `json:"days_difference"`
	MatchScore       float64         `json:"match_score"`
}

// Outcome is the full result of MatchInvoicePayment.
type Outcome struct {
	Code        OutcomeCode             `json:"code"`
	Message     string                  `json:"message"`
	Transaction *models.BankTransaction `json:"transaction,omitempty"`
	PaidAt      *time.Time              `json:"paid_at,omitempty"`
	Details     *Details                `json:"match_details,omitempty"`
	Diagnostics *Diagnostics            `json:"diagnostics,omitempty"`
}

// Matcher links unreconciled bank transactions to outstanding invoices.
type Matcher struct {
	invoices     InvoiceStore
	accounts     AccountStore
	transactions TransactionStore
	matches      MatchWriter
	log          *logrus.Entry
	now          func() time.Time
}

func NewMatcher(invoices InvoiceStore, accounts AccountStore, transactions TransactionStore, matches MatchWriter) *Matcher {
	return &Matcher{
		invoices:     invoices,
		accounts:     accounts,
		transactions: transactions,
		matches:      matches,
		log:          logrus.WithField("component", "payment_matcher"),
		now:          time.Now,
	}
}

type scoredCandidate struct {
	tx    *models.BankTransaction
	diff  decimal.Decimal
	days  int
	score float64
}

// MatchInvoicePayment searches the company's unreconciled credit
// transactions for one that settles the invoice. On success the invoice is
// marked paid (backdated to the transaction date) and the transaction is
// claimed and reconciled, in a single database transaction.
func (m *Matcher) MatchInvoicePayment(ctx context.Context, invoiceID uuid.UUID) (*Outcome, error) {
	inv, err := m.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	// Idempotent short-circuit: nothing to do, no side effects.
	if inv.Status == models.InvoiceStatusPaid && inv.PaidAt != nil {
		return &Outcome{Code: OutcomeAlreadyPaid, Message: "invoice is already paid"}, nil
	}

	if inv.Amount == nil || !inv.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: invoice %s has no usable amount", ErrInvalidInvoiceState, inv.ID)
	}
	if inv.InvoiceDate == nil {
		return nil, fmt.Errorf("%w: invoice %s has no invoice date", ErrInvalidInvoiceState, inv.ID)
	}

	accountIDs, err := m.accounts.ListCompanyAccountIDs(ctx, inv.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("resolving bank accounts: %w", err)
	}
	if len(accountIDs) == 0 {
		return &Outcome{Code: OutcomeNoAccounts, Message: "company has no bank accounts to search"}, nil
	}

	from, to := matching.Window(*inv.InvoiceDate, m.now())
	candidates, err := m.transactions.ListUnmatchedInRange(ctx, accountIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetching candidate transactions: %w", err)
	}

	amount := *inv.Amount
	tolerance := matching.Tolerance(amount)
	diag := &Diagnostics{CandidatesSeen: len(candidates)}

	var best *scoredCandidate
	for i := range candidates {
		cand := &candidates[i]
		if cand.Direction != models.DirectionCredit {
			// Debits can never settle a receivable.
			continue
		}
		diag.CreditsSeen++

		diff := cand.Amount.Sub(amount)
		if diff.Abs().GreaterThan(tolerance) {
			continue
		}
		diag.AmountQualified++

		days := matching.DaysBetween(cand.TransactionDate, *inv.InvoiceDate)
		score := matching.Score(diff, amount, days)
		// Strict less-than keeps the first-enumerated candidate on ties,
		// i.e. the most recent transaction in fetch order.
		if best == nil || score < best.score {
			best = &scoredCandidate{tx: cand, diff: diff, days: days, score: score}
		}
	}

	if best == nil {
		m.log.WithFields(logrus.Fields{
			"invoice_id":       inv.ID,
			"candidates_seen":  diag.CandidatesSeen,
			"credits_seen":     diag.CreditsSeen,
			"amount_qualified": diag.AmountQualified,
		}).Info("no qualifying transaction for invoice")
		return &Outcome{
			Code:        OutcomeNoMatch,
			Message:     "no qualifying bank transaction found",
			Diagnostics: diag,
		}, nil
	}

	// Backdate the payment to when it actually posted.
	paidAt := best.tx.TransactionDate
	audit := &models.MatchAuditLog{
		InvoiceID:        inv.ID,
		TransactionID:    best.tx.ID,
		Action:           "payment_matched",
		MatchScore:       best.score,
		AmountDifference: best.diff,
		DaysDifference:   best.days,
		PerformedBy:      "payment_matcher",
	}
	if err := m.matches.ApplyPaymentMatch(ctx, inv.ID, best.tx.ID, paidAt, audit); err != nil {
		return nil, fmt.Errorf("applying payment match: %w", err)
	}

	best.tx.MatchedInvoiceID = &inv.ID
	best.tx.IsReconciled = true

	m.log.WithFields(logrus.Fields{
		"invoice_id":     inv.ID,
		"transaction_id": best.tx.ID,
		"score":          best.score,
	}).Info("invoice payment matched")

	return &Outcome{
		Code:        OutcomeMatched,
		Message:     "invoice matched to bank transaction",
		Transaction: best.tx,
		PaidAt:      &paidAt,
		Details: &Details{
			AmountDifference: best.diff,
			DaysDifference:   best.days,
			MatchScore:       best.score,
		},
		Diagnostics: diag,
	}, nil
}
