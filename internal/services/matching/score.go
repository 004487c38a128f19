package matching

import (
	"time"

	"github.com/shopspring/decimal"
)

// Scoring weights. Date proximity dominates: amount differences inside the
// tolerance are assumed immaterial, while date proximity disambiguates
// between similar-amount transactions.
const (
	amountWeight = 0.3
	dateWeight   = 0.7

	// Candidate window around the invoice date, in days.
	windowDaysBefore = 60
	windowDaysAfter  = 90
)

var (
	relativeToleranceRate = decimal.NewFromFloat(0.01)

	// Absolute floor of 1.00 absorbs bank fee rounding on small invoices.
	minTolerance = decimal.NewFromInt(1)
)

// Tolerance returns the maximum acceptable amount difference for a candidate
// transaction: max(amount * 1%, 1.00).
func Tolerance(amount decimal.Decimal) decimal.Decimal {
	rel := amount.Mul(relativeToleranceRate)
	if rel.LessThan(minTolerance) {
		return minTolerance
	}
	return rel
}

// Window returns the inclusive candidate date range for an invoice:
// [invoiceDate - 60d, max(now, invoiceDate + 90d)]. The end always covers
// "now" unless the invoice is dated in the future, accommodating both early
// and late payments while bounding the search.
func Window(invoiceDate, now time.Time) (time.Time, time.Time) {
	start := invoiceDate.AddDate(0, 0, -windowDaysBefore)
	end := invoiceDate.AddDate(0, 0, windowDaysAfter)
	if now.After(end) {
		end = now
	}
	return start, end
}

// DaysBetween returns the absolute number of whole days between two dates.
func DaysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

// Score computes the composite candidate score; lower is better.
// amountScore is the difference as a percentage of the invoice amount,
// dateScore the absolute day distance.
func Score(amountDiff, invoiceAmount decimal.Decimal, daysApart int) float64 {
	amountScore, _ := amountDiff.Abs().
		Div(invoiceAmount).
		Mul(decimal.NewFromInt(100)).
		Float64()
	return amountWeight*amountScore + dateWeight*float64(daysApart)
}
