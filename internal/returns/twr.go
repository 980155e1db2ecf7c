package returns

// TimeWeighted computes the chained time-weighted return from a start
// value, an end value, and an ordered sequence of valuation snapshots
// at external cash-flow boundaries.
//
// Sub-periods are built as:
//
//	startValue            -> snapshots[0].ValueBefore
//	snapshots[i].ValueAfter -> snapshots[i+1].ValueBefore
//	snapshots[last].ValueAfter -> endValue
//
// Each sub-period return is (end - start) / start; the total is
// Π(1+Rᵢ) - 1. An empty snapshot list degenerates to the single-period
// simple return. ok is false when any sub-period start is zero or
// negative, which makes the whole chain undefined.
func TimeWeighted(startValue, endValue float64, snapshots []ValuationSnapshot) (float64, bool) {
	periodStarts := make([]float64, 0, len(snapshots)+1)
	periodEnds := make([]float64, 0, len(snapshots)+1)

	periodStarts = append(periodStarts, startValue)
	for _, snap := range snapshots {
		periodEnds = append(periodEnds, snap.ValueBefore)
		periodStarts = append(periodStarts, snap.ValueAfter)
	}
	periodEnds = append(periodEnds, endValue)

	total := 1.0
	for i := range periodStarts {
		subReturn, ok := subPeriodReturn(periodStarts[i], periodEnds[i])
		if !ok {
			return 0, false
		}
		total *= 1 + subReturn
	}
	return total - 1, true
}

// subPeriodReturn is (end - start) / start, undefined for start <= 0.
func subPeriodReturn(start, end float64) (float64, bool) {
	if start <= 0 {
		return 0, false
	}
	return (end - start) / start, true
}
