package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Method is one correction method: a leveling strategy paired with a
// refund distribution
type Method struct {
	Strategy     domain.LevelingStrategy   `json:"strategy"`
	Distribution domain.DistributionMethod `json:"distribution"`
}

// Name returns strategy/distribution
func (m Method) Name() string {
	return string(m.Strategy) + "/" + string(m.Distribution)
}

// DefaultMethod is the staircase leveling with rate distribution
var DefaultMethod = Method{Strategy: domain.LevelStaircase, Distribution: domain.DistributeByRate}

// AllMethods lists every supported correction method, base first
func AllMethods() []Method {
	return []Method{
		DefaultMethod,
		{Strategy: domain.LevelStaircase, Distribution: domain.DistributeByDollar},
		{Strategy: domain.LevelDirectToTarget, Distribution: domain.DistributeByRate},
		{Strategy: domain.LevelDirectToTarget, Distribution: domain.DistributeByDollar},
	}
}

// ParseMethod parses "strategy/distribution". A bare strategy uses rate distribution.
func ParseMethod(s string) (Method, error) {
	m := Method{Distribution: domain.DistributeByRate}
	strategy, distribution, found := strings.Cut(s, "/")
	m.Strategy = domain.LevelingStrategy(strategy)
	if found {
		m.Distribution = domain.DistributionMethod(distribution)
	}
	for _, known := range AllMethods() {
		if known == m {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("unknown correction method %q", s)
}

// ComparisonResult is one method's correction outcome for a census
type ComparisonResult struct {
	Method Method `json:"method"`

	// Key Metrics
	ADPRefund           decimal.Decimal `json:"adpRefund"`
	ACPRefund           decimal.Decimal `json:"acpRefund"`
	TotalRefund         decimal.Decimal `json:"totalRefund"`
	TotalEarnings       decimal.Decimal `json:"totalEarnings"`
	TotalDistributed    decimal.Decimal `json:"totalDistributed"`
	RefundedHCEs        int             `json:"refundedHces"`
	ADPCorrectedAverage decimal.Decimal `json:"adpCorrectedAverage"`
	ACPCorrectedAverage decimal.Decimal `json:"acpCorrectedAverage"`

	// Comparison to Base
	RefundDiffFromBase decimal.Decimal `json:"refundDiffFromBase"`
	RefundPctFromBase  decimal.Decimal `json:"refundPctFromBase"`
	RefundedHCEsDiff   int             `json:"refundedHcesDiff"`

	Report *domain.PlanReport `json:"-"`
}

// ComparisonSet is the base method plus every alternative
type ComparisonSet struct {
	PlanName           string             `json:"planName"`
	PlanYear           int                `json:"planYear"`
	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
	CensusPath         string             `json:"censusPath,omitempty"`
}

// MetricsCalculator extracts comparison metrics from plan reports
type MetricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// CalculateMetrics summarizes the refunds a plan report hands out
func (mc *MetricsCalculator) CalculateMetrics(method Method, report *domain.PlanReport) ComparisonResult {
	result := ComparisonResult{
		Method:           method,
		ADPRefund:        refundOf(report.ADP),
		ACPRefund:        refundOf(report.ACP),
		TotalEarnings:    decimal.Zero,
		TotalDistributed: decimal.Zero,
		Report:           report,
	}
	result.TotalRefund = result.ADPRefund.Add(result.ACPRefund)
	if report.ADP != nil {
		result.ADPCorrectedAverage = correctedAverage(report.ADP)
	}
	if report.ACP != nil {
		result.ACPCorrectedAverage = correctedAverage(report.ACP)
	}

	refunded := make(map[string]bool)
	for _, dist := range report.Distributions {
		result.TotalEarnings = result.TotalEarnings.Add(dist.Earnings)
		result.TotalDistributed = result.TotalDistributed.Add(dist.TotalToReturn)
		if dist.Principal.IsPositive() {
			refunded[dist.ID] = true
		}
	}
	result.RefundedHCEs = len(refunded)

	return result
}

// CalculateComparison fills in the deltas against base
func (mc *MetricsCalculator) CalculateComparison(alt, base ComparisonResult) ComparisonResult {
	alt.RefundDiffFromBase = alt.TotalRefund.Sub(base.TotalRefund)

	if !base.TotalRefund.IsZero() {
		alt.RefundPctFromBase = alt.RefundDiffFromBase.
			Div(base.TotalRefund).
			Mul(decimal.NewFromInt(100))
	}

	alt.RefundedHCEsDiff = alt.RefundedHCEs - base.RefundedHCEs
	return alt
}

func refundOf(result *domain.TestResult) decimal.Decimal {
	if result == nil {
		return decimal.Zero
	}
	return result.TotalRequiredRefund
}

// correctedAverage is the HCE average after correction, or the original
// average when the test passed
func correctedAverage(result *domain.TestResult) decimal.Decimal {
	if result.Passed {
		return result.HCEAverageRate
	}
	return result.CorrectedHCEAverageRate
}

// GenerateRecommendations points at the cheapest correction and the one
// touching the fewest HCEs
func GenerateRecommendations(compSet *ComparisonSet) []string {
	recommendations := []string{}

	if compSet.BaseResult == nil {
		return recommendations
	}
	if compSet.BaseResult.TotalRefund.IsZero() {
		return append(recommendations, "No corrective refunds are required under any method")
	}
	if len(compSet.AlternativeResults) == 0 {
		return recommendations
	}

	lowestRefund := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.TotalRefund.LessThan(lowestRefund.TotalRefund) {
			lowestRefund = alt
		}
	}
	if lowestRefund != compSet.BaseResult {
		savings := compSet.BaseResult.TotalRefund.Sub(lowestRefund.TotalRefund)
		recommendations = append(recommendations,
			"Lowest Refund: "+lowestRefund.Method.Name()+" returns $"+savings.StringFixed(2)+
				" less than "+compSet.BaseResult.Method.Name())
	}

	for _, alt := range compSet.AlternativeResults {
		if alt.RefundDiffFromBase.IsPositive() {
			recommendations = append(recommendations,
				"Over-correction: "+alt.Method.Name()+" refunds $"+alt.RefundDiffFromBase.StringFixed(2)+
					" more than "+compSet.BaseResult.Method.Name())
		}
	}

	fewest := compSet.BaseResult
	for i := range compSet.AlternativeResults {
		alt := &compSet.AlternativeResults[i]
		if alt.RefundedHCEs < fewest.RefundedHCEs {
			fewest = alt
		}
	}
	if fewest != compSet.BaseResult {
		recommendations = append(recommendations,
			fmt.Sprintf("Fewest HCEs Affected: %s refunds %d HCE(s) instead of %d",
				fewest.Method.Name(), fewest.RefundedHCEs, compSet.BaseResult.RefundedHCEs))
	}

	return recommendations
}
