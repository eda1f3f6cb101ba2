package calculation

import (
	"slices"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// rateEpsilon is the tolerance for rate comparisons (fractions)
	rateEpsilon = decimal.New(1, -9)
	// dollarEpsilon is the tolerance when leveling dollar amounts
	dollarEpsilon = decimal.New(1, -6)
)

type levelEntry struct {
	index int
	value decimal.Decimal
}

// levelDown removes excess from values starting at the top. Each pass takes
// the group tied at the highest value and lowers it together toward the next
// distinct value below, never past it, so the distribution flattens like a
// staircase. It returns the per-index reduction, in input order, and the number
// of passes. values is never modified.
//
// Every pass either finishes or merges at least one more entry into the top
// group, so len(values) passes always suffice; maxIter guards against
// anything else and yields a LevelingError.
func levelDown(values []decimal.Decimal, excess decimal.Decimal, maxIter int, tolerance decimal.Decimal) ([]decimal.Decimal, int, error) {
	n := len(values)
	reductions := make([]decimal.Decimal, n)
	for i := range reductions {
		reductions[i] = decimal.Zero
	}
	if n == 0 || !excess.GreaterThan(tolerance) {
		return reductions, 0, nil
	}

	working := make([]levelEntry, n)
	for i, v := range values {
		working[i] = levelEntry{index: i, value: v}
	}

	remaining := excess
	iterations := 0
	for remaining.GreaterThan(tolerance) {
		if iterations >= maxIter {
			return nil, iterations, &domain.LevelingError{Iterations: iterations, Remaining: remaining}
		}
		iterations++

		// fresh list per pass, highest first, ties in input order
		next := make([]levelEntry, n)
		copy(next, working)
		slices.SortStableFunc(next, func(a, b levelEntry) int {
			if c := b.value.Cmp(a.value); c != 0 {
				return c
			}
			return a.index - b.index
		})

		top := next[0].value
		k := 1
		for k < n && next[k].value.Equal(top) {
			k++
		}
		floor := decimal.Zero
		if k < n {
			floor = next[k].value
		}

		capacity := top.Sub(floor).Mul(decimal.NewFromInt(int64(k)))
		if !capacity.IsPositive() {
			// nothing left above zero to take from
			return nil, iterations, &domain.LevelingError{Iterations: iterations, Remaining: remaining}
		}

		var level decimal.Decimal
		if remaining.GreaterThanOrEqual(capacity) {
			level = floor
			remaining = remaining.Sub(capacity)
		} else {
			level = decimal.Max(floor, top.Sub(remaining.Div(decimal.NewFromInt(int64(k)))))
			remaining = decimal.Zero
		}
		for j := 0; j < k; j++ {
			next[j].value = level
		}
		working = next
	}

	for _, e := range working {
		reductions[e.index] = values[e.index].Sub(e.value)
	}
	return reductions, iterations, nil
}

// reduceToTarget cuts every value above target down to target in one pass
func reduceToTarget(values []decimal.Decimal, target decimal.Decimal) []decimal.Decimal {
	reductions := make([]decimal.Decimal, len(values))
	for i, v := range values {
		reductions[i] = decimal.Max(decimal.Zero, v.Sub(target))
	}
	return reductions
}
