package calculation

import (
	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

// AssessRisk checks two known averages against the statutory curve without
// running any correction. Headroom is how far the HCE average can still rise
// (negative when it is already over).
func AssessRisk(nhceAverageRate, hceAverageRate decimal.Decimal) (*domain.RiskAssessment, error) {
	if nhceAverageRate.IsNegative() {
		return nil, domain.NewInvalidInput("nhceAverageRate", nhceAverageRate, "cannot be negative")
	}
	if hceAverageRate.IsNegative() {
		return nil, domain.NewInvalidInput("hceAverageRate", hceAverageRate, "cannot be negative")
	}

	maxAllowed, prong := MaxAllowedHCERate(nhceAverageRate)
	return &domain.RiskAssessment{
		NHCEAverageRate:   nhceAverageRate,
		HCEAverageRate:    hceAverageRate,
		MaxAllowedHCERate: maxAllowed,
		Prong:             prong,
		Passing:           !hceAverageRate.GreaterThan(maxAllowed),
		Headroom:          maxAllowed.Sub(hceAverageRate),
	}, nil
}
