package payment

import (
	"context"
	"sort"
	"testing"
	"time"

	"invoice-matching-backend/internal/models"
	"invoice-matching-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dptr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func day(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

type appliedMatch struct {
	invoiceID     uuid.UUID
	transactionID uuid.UUID
	paidAt        time.Time
	audit         *models.MatchAuditLog
}

// fakeStore is an in-memory implementation of the matcher's store
// interfaces with error injection for failure paths.
type fakeStore struct {
	invoices   map[uuid.UUID]*models.Invoice
	accountIDs []uuid.UUID
	accountErr error
	txs        []models.BankTransaction
	txErr      error
	applyErr   error

	accountCalls int
	lastFrom     time.Time
	lastTo       time.Time
	applied      []appliedMatch
}

func newFakeStore() *fakeStore {
	return &fakeStore{invoices: make(map[uuid.UUID]*models.Invoice)}
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeStore) ListCompanyAccountIDs(_ context.Context, _ uuid.UUID) ([]uuid.UUID, error) {
	f.accountCalls++
	return f.accountIDs, f.accountErr
}

func (f *fakeStore) ListUnmatchedInRange(_ context.Context, _ []uuid.UUID, from, to time.Time) ([]models.BankTransaction, error) {
	f.lastFrom, f.lastTo = from, to
	if f.txErr != nil {
		return nil, f.txErr
	}
	var out []models.BankTransaction
	for _, tx := range f.txs {
		if tx.MatchedInvoiceID != nil {
			continue
		}
		if tx.TransactionDate.Before(from) || tx.TransactionDate.After(to) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TransactionDate.After(out[j].TransactionDate)
	})
	return out, nil
}

func (f *fakeStore) ApplyPaymentMatch(_ context.Context, invoiceID, transactionID uuid.UUID, paidAt time.Time, audit *models.MatchAuditLog) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, appliedMatch{invoiceID, transactionID, paidAt, audit})
	return nil
}

func newTestMatcher(store *fakeStore, now time.Time) *Matcher {
	m := NewMatcher(store, store, store, store)
	m.now = func() time.Time { return now }
	return m
}

func pendingInvoice(amount string, invoiceDate time.Time) *models.Invoice {
	return &models.Invoice{
		ID:          uuid.New(),
		CompanyID:   uuid.New(),
		Amount:      dptr(amount),
		InvoiceDate: &invoiceDate,
		Status:      models.InvoiceStatusPending,
	}
}

func credit(amount string, date time.Time) models.BankTransaction {
	return models.BankTransaction{
		ID:              uuid.New(),
		BankAccountID:   uuid.New(),
		TransactionDate: date,
		Amount:          d(amount),
		Direction:       models.DirectionCredit,
	}
}

func TestMatchInvoicePayment_InvoiceNotFound(t *testing.T) {
	store := newFakeStore()
	m := newTestMatcher(store, day(2025, 6, 1))

	_, err := m.MatchInvoicePayment(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMatchInvoicePayment_InvalidState(t *testing.T) {
	store := newFakeStore()
	m := newTestMatcher(store, day(2025, 6, 1))

	t.Run("missing amount", func(t *testing.T) {
		invDate := day(2025, 3, 15)
		inv := &models.Invoice{ID: uuid.New(), InvoiceDate: &invDate, Status: models.InvoiceStatusPending}
		store.invoices[inv.ID] = inv

		_, err := m.MatchInvoicePayment(context.Background(), inv.ID)
		assert.ErrorIs(t, err, ErrInvalidInvoiceState)
	})

	t.Run("missing invoice date", func(t *testing.T) {
		inv := &models.Invoice{ID: uuid.New(), Amount: dptr("100.00"), Status: models.InvoiceStatusPending}
		store.invoices[inv.ID] = inv

		_, err := m.MatchInvoicePayment(context.Background(), inv.ID)
		assert.ErrorIs(t, err, ErrInvalidInvoiceState)
	})
}

func TestMatchInvoicePayment_AlreadyPaidIsIdempotent(t *testing.T) {
	store := newFakeStore()
	m := newTestMatcher(store, day(2025, 6, 1))

	paidAt := day(2025, 4, 1)
	inv := pendingInvoice("100.00", day(2025, 3, 15))
	inv.Status = models.InvoiceStatusPaid
	inv.PaidAt = &paidAt
	store.invoices[inv.ID] = inv

	for i := 0; i < 2; i++ {
		outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlreadyPaid, outcome.Code)
	}

	// Short-circuit: no account lookups, no writes.
	assert.Zero(t, store.accountCalls)
	assert.Empty(t, store.applied)
}

func TestMatchInvoicePayment_NoAccounts(t *testing.T) {
	store := newFakeStore()
	m := newTestMatcher(store, day(2025, 6, 1))

	inv := pendingInvoice("100.00", day(2025, 3, 15))
	store.invoices[inv.ID] = inv

	outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoAccounts, outcome.Code)
	assert.Empty(t, store.applied)
}

func TestMatchInvoicePayment_ToleranceFloor(t *testing.T) {
	// Invoice of 50.00: tolerance = max(0.50, 1.00) = 1.00.
	invDate := day(2025, 3, 15)

	t.Run("48.99 is outside tolerance", func(t *testing.T) {
		store := newFakeStore()
		store.accountIDs = []uuid.UUID{uuid.New()}
		store.txs = []models.BankTransaction{credit("48.99", invDate)}
		m := newTestMatcher(store, day(2025, 6, 1))

		inv := pendingInvoice("50.00", invDate)
		store.invoices[inv.ID] = inv

		outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoMatch, outcome.Code)
		assert.Equal(t, 1, outcome.Diagnostics.CreditsSeen)
		assert.Equal(t, 0, outcome.Diagnostics.AmountQualified)
	})

	t.Run("49.00 is accepted", func(t *testing.T) {
		store := newFakeStore()
		store.accountIDs = []uuid.UUID{uuid.New()}
		store.txs = []models.BankTransaction{credit("49.00", invDate)}
		m := newTestMatcher(store, day(2025, 6, 1))

		inv := pendingInvoice("50.00", invDate)
		store.invoices[inv.ID] = inv

		outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeMatched, outcome.Code)
		assert.True(t, outcome.Details.AmountDifference.Equal(d("-1.00")))
	})
}

func TestMatchInvoicePayment_CreditsOnly(t *testing.T) {
	invDate := day(2025, 3, 15)
	store := newFakeStore()
	store.accountIDs = []uuid.UUID{uuid.New()}

	// Debit with the exact amount on the exact date is never selected.
	debit := credit("100.00", invDate)
	debit.Direction = models.DirectionDebit
	store.txs = []models.BankTransaction{debit}

	m := newTestMatcher(store, day(2025, 6, 1))
	inv := pendingInvoice("100.00", invDate)
	store.invoices[inv.ID] = inv

	outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, outcome.Code)
	assert.Equal(t, 1, outcome.Diagnostics.CandidatesSeen)
	assert.Equal(t, 0, outcome.Diagnostics.CreditsSeen)
}

func TestMatchInvoicePayment_DateProximityWins(t *testing.T) {
	invDate := day(2025, 3, 15)
	store := newFakeStore()
	store.accountIDs = []uuid.UUID{uuid.New()}

	// Exact amount but 10 days out: score 0.3*0 + 0.7*10 = 7.0.
	exactFar := credit("1000.00", invDate.AddDate(0, 0, 10))
	// Off by 0.5% but 2 days out: score 0.3*0.5 + 0.7*2 = 1.55.
	closeNear := credit("1005.00", invDate.AddDate(0, 0, 2))
	store.txs = []models.BankTransaction{exactFar, closeNear}

	m := newTestMatcher(store, day(2025, 6, 1))
	inv := pendingInvoice("1000.00", invDate)
	store.invoices[inv.ID] = inv

	outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMatched, outcome.Code)
	assert.Equal(t, closeNear.ID, outcome.Transaction.ID)
	assert.InDelta(t, 1.55, outcome.Details.MatchScore, 1e-9)
	assert.Equal(t, 2, outcome.Diagnostics.AmountQualified)
}

func TestMatchInvoicePayment_TieBreaksToMostRecent(t *testing.T) {
	invDate := day(2025, 3, 15)
	store := newFakeStore()
	store.accountIDs = []uuid.UUID{uuid.New()}

	// Same amount, same day distance on either side: identical scores.
	older := credit("1000.00", invDate.AddDate(0, 0, -5))
	newer := credit("1000.00", invDate.AddDate(0, 0, 5))
	store.txs = []models.BankTransaction{older, newer}

	m := newTestMatcher(store, day(2025, 6, 1))
	inv := pendingInvoice("1000.00", invDate)
	store.invoices[inv.ID] = inv

	outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
	require.NoError(t, err)
	// Fetch order is date descending, so the newer transaction wins the tie.
	assert.Equal(t, newer.ID, outcome.Transaction.ID)
}

func TestMatchInvoicePayment_WindowEdges(t *testing.T) {
	invDate := day(2025, 3, 15)

	t.Run("transaction exactly 60 days before is included", func(t *testing.T) {
		store := newFakeStore()
		store.accountIDs = []uuid.UUID{uuid.New()}
		store.txs = []models.BankTransaction{credit("100.00", invDate.AddDate(0, 0, -60))}
		m := newTestMatcher(store, day(2025, 6, 1))

		inv := pendingInvoice("100.00", invDate)
		store.invoices[inv.ID] = inv

		outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeMatched, outcome.Code)
		assert.Equal(t, invDate.AddDate(0, 0, -60), store.lastFrom)
	})

	t.Run("one day earlier is excluded", func(t *testing.T) {
		store := newFakeStore()
		store.accountIDs = []uuid.UUID{uuid.New()}
		store.txs = []models.BankTransaction{credit("100.00", invDate.AddDate(0, 0, -61))}
		m := newTestMatcher(store, day(2025, 6, 1))

		inv := pendingInvoice("100.00", invDate)
		store.invoices[inv.ID] = inv

		outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoMatch, outcome.Code)
		assert.Equal(t, 0, outcome.Diagnostics.CandidatesSeen)
	})

	t.Run("future-dated invoice extends the window end", func(t *testing.T) {
		store := newFakeStore()
		store.accountIDs = []uuid.UUID{uuid.New()}
		now := day(2025, 3, 1) // before the invoice date
		m := newTestMatcher(store, now)

		inv := pendingInvoice("100.00", invDate)
		store.invoices[inv.ID] = inv

		_, err := m.MatchInvoicePayment(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, invDate.AddDate(0, 0, 90), store.lastTo)
	})
}

func TestMatchInvoicePayment_BackdatesAndApplies(t *testing.T) {
	invDate := day(2025, 3, 15)
	txDate := invDate.AddDate(0, 0, 4)
	store := newFakeStore()
	store.accountIDs = []uuid.UUID{uuid.New()}
	tx := credit("100.00", txDate)
	store.txs = []models.BankTransaction{tx}

	m := newTestMatcher(store, day(2025, 6, 1))
	inv := pendingInvoice("100.00", invDate)
	store.invoices[inv.ID] = inv

	outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, OutcomeMatched, outcome.Code)

	require.Len(t, store.applied, 1)
	applied := store.applied[0]
	assert.Equal(t, inv.ID, applied.invoiceID)
	assert.Equal(t, tx.ID, applied.transactionID)
	// Payment is backdated to when the transaction posted, not "now".
	assert.Equal(t, txDate, applied.paidAt)
	assert.Equal(t, txDate, *outcome.PaidAt)

	require.NotNil(t, applied.audit)
	assert.Equal(t, "payment_matched", applied.audit.Action)
	assert.Equal(t, tx.ID, applied.audit.TransactionID)

	assert.Equal(t, &inv.ID, outcome.Transaction.MatchedInvoiceID)
	assert.True(t, outcome.Transaction.IsReconciled)
}

func TestMatchInvoicePayment_ApplyFailureIsHardError(t *testing.T) {
	invDate := day(2025, 3, 15)
	store := newFakeStore()
	store.accountIDs = []uuid.UUID{uuid.New()}
	store.txs = []models.BankTransaction{credit("100.00", invDate)}
	store.applyErr = repository.ErrAlreadyMatched

	m := newTestMatcher(store, day(2025, 6, 1))
	inv := pendingInvoice("100.00", invDate)
	store.invoices[inv.ID] = inv

	_, err := m.MatchInvoicePayment(context.Background(), inv.ID)
	assert.ErrorIs(t, err, repository.ErrAlreadyMatched)
}

func TestMatchInvoicePayment_NoMatchDiagnostics(t *testing.T) {
	invDate := day(2025, 3, 15)
	store := newFakeStore()
	store.accountIDs = []uuid.UUID{uuid.New()}

	debit := credit("100.00", invDate)
	debit.Direction = models.DirectionDebit
	store.txs = []models.BankTransaction{
		debit,
		credit("150.00", invDate), // credit, out of tolerance
		credit("90.00", invDate),  // credit, out of tolerance
	}

	m := newTestMatcher(store, day(2025, 6, 1))
	inv := pendingInvoice("100.00", invDate)
	store.invoices[inv.ID] = inv

	outcome, err := m.MatchInvoicePayment(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoMatch, outcome.Code)
	assert.Equal(t, 3, outcome.Diagnostics.CandidatesSeen)
	assert.Equal(t, 2, outcome.Diagnostics.CreditsSeen)
	assert.Equal(t, 0, outcome.Diagnostics.AmountQualified)
	assert.NotEmpty(t, outcome.Message)
}
