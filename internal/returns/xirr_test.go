package returns

import (
	"math"
	"testing"
)

// TestXIRR tests the annualized internal rate of return solver.
//
// WHY: XIRR is the full-history money-weighted figure. These cases pin
// down the solver against analytically known rates and the input
// preconditions (at least two flows, both signs present).
func TestXIRR(t *testing.T) {
	t.Run("single investment and terminal value", func(t *testing.T) {
		flows := []CashFlow{
			{Date: date("2020-01-01"), Amount: -1000},
			{Date: date("2021-01-01"), Amount: 1100},
		}
		rate, ok := XIRR(flows)
		if !ok {
			t.Fatal("Expected a solved rate")
		}
		// 366 days at 365.25 days/year: (1+r)^(366/365.25) = 1.1.
		expected := math.Pow(1.1, 365.25/366.0) - 1
		if math.Abs(rate-expected) > 1e-4 {
			t.Errorf("Expected %v, got %v", expected, rate)
		}
	})

	t.Run("flat series solves to zero", func(t *testing.T) {
		flows := []CashFlow{
			{Date: date("2020-01-01"), Amount: -1000},
			{Date: date("2022-01-01"), Amount: 1000},
		}
		rate, ok := XIRR(flows)
		if !ok {
			t.Fatal("Expected a solved rate")
		}
		if math.Abs(rate) > 1e-4 {
			t.Errorf("Expected ~0, got %v", rate)
		}
	})

	t.Run("multiple investments", func(t *testing.T) {
		// Two deposits a year apart, final value two years in. The
		// solved rate must zero the NPV.
		flows := []CashFlow{
			{Date: date("2020-01-01"), Amount: -1000},
			{Date: date("2021-01-01"), Amount: -1000},
			{Date: date("2022-01-01"), Amount: 2300},
		}
		rate, ok := XIRR(flows)
		if !ok {
			t.Fatal("Expected a solved rate")
		}

		npv := 0.0
		base := flows[0].Date
		for _, f := range flows {
			years := f.Date.Sub(base).Hours() / 24 / 365.25
			npv += f.Amount / math.Pow(1+rate, years)
		}
		if math.Abs(npv) > 1e-3 {
			t.Errorf("Solved rate %v leaves NPV %v", rate, npv)
		}
		if rate <= 0 || rate >= 0.2 {
			t.Errorf("Expected a modest positive rate, got %v", rate)
		}
	})

	t.Run("unordered input is sorted internally", func(t *testing.T) {
		ordered := []CashFlow{
			{Date: date("2020-01-01"), Amount: -1000},
			{Date: date("2021-01-01"), Amount: 1100},
		}
		shuffled := []CashFlow{ordered[1], ordered[0]}

		r1, ok1 := XIRR(ordered)
		r2, ok2 := XIRR(shuffled)
		if !ok1 || !ok2 {
			t.Fatal("Expected both series to solve")
		}
		if math.Abs(r1-r2) > 1e-9 {
			t.Errorf("Expected identical rates, got %v and %v", r1, r2)
		}
	})

	t.Run("rejects degenerate series", func(t *testing.T) {
		if _, ok := XIRR(nil); ok {
			t.Error("Expected no rate for empty series")
		}
		if _, ok := XIRR([]CashFlow{{Date: date("2020-01-01"), Amount: -1000}}); ok {
			t.Error("Expected no rate for single flow")
		}
		sameSign := []CashFlow{
			{Date: date("2020-01-01"), Amount: -1000},
			{Date: date("2021-01-01"), Amount: -500},
		}
		if _, ok := XIRR(sameSign); ok {
			t.Error("Expected no rate when all flows share a sign")
		}
	})
}
