package returns

import (
	"math"
	"testing"
)

// TestTimeWeighted tests the chained time-weighted return.
//
// WHY: TWR isolates market performance from the timing of deposits and
// withdrawals. These cases pin down the sub-period chaining against the
// snapshot series and the degenerate no-flow path.
func TestTimeWeighted(t *testing.T) {
	t.Run("no snapshots degenerates to simple return", func(t *testing.T) {
		r, ok := TimeWeighted(1000, 1100, nil)
		if !ok {
			t.Fatal("Expected defined return")
		}
		if math.Abs(r-0.10) > 1e-9 {
			t.Errorf("Expected 0.10, got %v", r)
		}
	})

	t.Run("single flow chains two sub-periods", func(t *testing.T) {
		// 1000 grows to 1100, then a 500 deposit, then 1600 grows to
		// 1760: two sub-periods of +10% each.
		snapshots := []ValuationSnapshot{
			{Date: date("2024-06-01"), ValueBefore: 1100, ValueAfter: 1600},
		}
		r, ok := TimeWeighted(1000, 1760, snapshots)
		if !ok {
			t.Fatal("Expected defined return")
		}
		if math.Abs(r-0.21) > 1e-9 {
			t.Errorf("Expected 0.21, got %v", r)
		}
	})

	t.Run("deposit timing does not change the result", func(t *testing.T) {
		// Same market movement, different deposit sizes: TWR must agree.
		small := []ValuationSnapshot{{Date: date("2024-06-01"), ValueBefore: 1100, ValueAfter: 1200}}
		large := []ValuationSnapshot{{Date: date("2024-06-01"), ValueBefore: 1100, ValueAfter: 5000}}

		rSmall, ok := TimeWeighted(1000, 1200*1.05, small)
		if !ok {
			t.Fatal("Expected defined return")
		}
		rLarge, ok := TimeWeighted(1000, 5000*1.05, large)
		if !ok {
			t.Fatal("Expected defined return")
		}
		if math.Abs(rSmall-rLarge) > 1e-9 {
			t.Errorf("Expected identical TWR, got %v and %v", rSmall, rLarge)
		}
	})

	t.Run("undefined when a sub-period starts at zero", func(t *testing.T) {
		if _, ok := TimeWeighted(0, 1100, nil); ok {
			t.Error("Expected undefined return for zero start value")
		}

		snapshots := []ValuationSnapshot{
			{Date: date("2024-06-01"), ValueBefore: 1100, ValueAfter: 0},
		}
		if _, ok := TimeWeighted(1000, 500, snapshots); ok {
			t.Error("Expected undefined return when a sub-period starts at zero")
		}
	})
}
