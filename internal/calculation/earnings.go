package calculation

import (
	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

// AllocableEarnings computes the gain or loss attributable to a corrective
// distribution using the fractional method:
//
//	net      = end - start - contributions
//	earnings = excess * net / (start + contributions)
//
// It returns the allocable earnings and the account's net
// gain or loss; earnings are negative in a down year.
func AllocableEarnings(excess, startBalance, contributions, endBalance decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if !excess.IsPositive() {
		return decimal.Zero, decimal.Zero, domain.NewInvalidInput("excess", excess, "must be positive")
	}
	if startBalance.IsNegative() {
		return decimal.Zero, decimal.Zero, domain.NewInvalidInput("startBalance", startBalance, "cannot be negative")
	}
	if contributions.IsNegative() {
		return decimal.Zero, decimal.Zero, domain.NewInvalidInput("contributions", contributions, "cannot be negative")
	}
	if endBalance.IsNegative() {
		return decimal.Zero, decimal.Zero, domain.NewInvalidInput("endBalance", endBalance, "cannot be negative")
	}
	if excess.GreaterThan(contributions) {
		return decimal.Zero, decimal.Zero, domain.NewInvalidInput("excess", excess, "cannot exceed total contributions for the year")
	}

	// excess > 0 and excess <= contributions keep base positive
	net := endBalance.Sub(startBalance).Sub(contributions)
	base := startBalance.Add(contributions)
	return excess.Mul(net).Div(base), net, nil
}
