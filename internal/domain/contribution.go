package domain

import (
	"github.com/shopspring/decimal"
)

// TestKind identifies which nondiscrimination test a result belongs to
type TestKind string

const (
	TestADP TestKind = "ADP" // Actual Deferral Percentage (elective deferrals)
	TestACP TestKind = "ACP" // Actual Contribution Percentage (match + after-tax)
)

// LevelingStrategy selects how the top-down correction lowers HCE rates
type LevelingStrategy string

const (
	// LevelStaircase lowers the highest rate group toward the next-highest rate,
	// one level at a time, until the HCE average reaches the limit.
	LevelStaircase LevelingStrategy = "staircase"
	// LevelDirectToTarget cuts every HCE above the limit straight to the limit.
	// Only exact when a single HCE is above the limit; otherwise it over-corrects.
	LevelDirectToTarget LevelingStrategy = "direct_to_target"
)

// DistributionMethod selects how the total refund is assigned to HCEs
type DistributionMethod string

const (
	// DistributeByRate refunds each HCE the dollar value of its own rate reduction
	DistributeByRate DistributionMethod = "rate"
	// DistributeByDollar levels the total refund across the largest dollar contributions
	DistributeByDollar DistributionMethod = "dollar"
)

// ContributionRecord is one employee's input to a leveling test
type ContributionRecord struct {
	ID                 string          `yaml:"id" json:"id"`
	Compensation       decimal.Decimal `yaml:"compensation" json:"compensation"`
	ContributionAmount decimal.Decimal `yaml:"contribution_amount" json:"contribution_amount"`
}

// Rate returns ContributionAmount / Compensation as a fraction.
// It is always derived, so it can never drift from the amount.
func (r ContributionRecord) Rate() decimal.Decimal {
	if r.Compensation.IsZero() {
		return decimal.Zero
	}
	return r.ContributionAmount.Div(r.Compensation)
}

// CorrectionRecord is the derived correction for one input record
type CorrectionRecord struct {
	ID            string          `json:"id"`
	Compensation  decimal.Decimal `json:"compensation"`
	OriginalRate  decimal.Decimal `json:"original_rate"`
	CorrectedRate decimal.Decimal `json:"corrected_rate"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
}

// TestResult is the outcome of an ADP or ACP leveling test
type TestResult struct {
	Kind                    TestKind           `json:"kind"`
	NHCEAverageRate         decimal.Decimal    `json:"nhce_average_rate"`
	HCEAverageRate          decimal.Decimal    `json:"hce_average_rate"`
	MaxAllowedHCERate       decimal.Decimal    `json:"max_allowed_hce_rate"`
	Prong                   string             `json:"prong"`
	Passed                  bool               `json:"passed"`
	Waived                  bool               `json:"waived,omitempty"`
	TotalRequiredRefund     decimal.Decimal    `json:"total_required_refund"`
	CorrectedHCEAverageRate decimal.Decimal    `json:"corrected_hce_average_rate"`
	Corrections             []CorrectionRecord `json:"corrections"`
	Strategy                LevelingStrategy   `json:"strategy"`
	Distribution            DistributionMethod `json:"distribution"`
	Iterations              int                `json:"iterations"`
}

// RefundedCount returns the number of HCEs receiving a non-zero refund
func (tr *TestResult) RefundedCount() int {
	count := 0
	for _, c := range tr.Corrections {
		if c.RefundAmount.IsPositive() {
			count++
		}
	}
	return count
}

// RefundFor returns the refund assigned to the given record ID
func (tr *TestResult) RefundFor(id string) decimal.Decimal {
	for _, c := range tr.Corrections {
		if c.ID == id {
			return c.RefundAmount
		}
	}
	return decimal.Zero
}

// RiskAssessment is the quick margin check on two known averages
type RiskAssessment struct {
	NHCEAverageRate   decimal.Decimal `json:"nhce_average_rate"`
	HCEAverageRate    decimal.Decimal `json:"hce_average_rate"`
	MaxAllowedHCERate decimal.Decimal `json:"max_allowed_hce_rate"`
	Prong             string          `json:"prong"`
	Passing           bool            `json:"passing"`
	// Headroom is positive when HCEs can still increase, negative when over
	Headroom decimal.Decimal `json:"headroom"`
}
