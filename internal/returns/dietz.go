package returns

import "time"

// ModifiedDietz computes the money-weighted return over
// [periodStart, periodEnd]:
//
//	R = (End - Start - ΣCF) / (Start + Σ(CFᵢ × Wᵢ))
//
// where Wᵢ = (TotalDays - DaysSinceStartᵢ) / TotalDays and cash-flow
// dates are compared date-only. The result is fractional (0.125 =
// 12.5%). ok is false when the return is undefined: an empty period or
// a zero/negative denominator.
func ModifiedDietz(startValue, endValue float64, periodStart, periodEnd time.Time, flows []CashFlow) (float64, bool) {
	totalDays := daysBetween(periodStart, periodEnd)
	if totalDays <= 0 {
		return 0, false
	}

	netFlow := 0.0
	weightedFlow := 0.0
	for _, flow := range flows {
		netFlow += flow.Amount

		daysSinceStart := daysBetween(periodStart, flow.Date)
		weight := (totalDays - daysSinceStart) / totalDays
		weightedFlow += flow.Amount * weight
	}

	denominator := startValue + weightedFlow
	if denominator <= 0 {
		return 0, false
	}

	return (endValue - startValue - netFlow) / denominator, true
}
