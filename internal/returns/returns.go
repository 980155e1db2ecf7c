// Package returns contains the pure return-calculation kernels:
// Modified Dietz, chained time-weighted return, and XIRR. Functions in
// this package never touch storage or providers; callers assemble the
// cash-flow and valuation series and interpret a false ok as "return
// undefined for these inputs".
package returns

import "time"

// CashFlow is a dated, signed external cash flow. Positive amounts are
// inflows into the portfolio, negative amounts are outflows. Only the
// date component matters; time of day is ignored.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// ValuationSnapshot is the time-weighted-return analogue of a cash
// flow: the portfolio value immediately before and after an external
// flow on Date.
type ValuationSnapshot struct {
	Date        time.Time
	ValueBefore float64
	ValueAfter  float64
}

// dateOnly truncates a time to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns whole days from a to b, date-only.
func daysBetween(a, b time.Time) float64 {
	return dateOnly(b).Sub(dateOnly(a)).Hours() / 24
}
