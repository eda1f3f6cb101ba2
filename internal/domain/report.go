package domain

import (
	"github.com/shopspring/decimal"
)

// RefundEarnings is the corrective distribution for one HCE including allocable earnings
type RefundEarnings struct {
	ID            string          `json:"id"`
	Kind          TestKind        `json:"kind"`
	Principal     decimal.Decimal `json:"principal"`
	Earnings      decimal.Decimal `json:"earnings"`
	TotalToReturn decimal.Decimal `json:"total_to_return"`
}

// PlanReport is the complete output of a plan run
type PlanReport struct {
	PlanName   string                     `json:"plan_name"`
	PlanYear   int                        `json:"plan_year"`
	SafeHarbor bool                       `json:"safe_harbor"`
	Limits     map[string]decimal.Decimal `json:"limits"`

	HCECount  int `json:"hce_count"`
	NHCECount int `json:"nhce_count"`

	ADP *TestResult `json:"adp"`
	ACP *TestResult `json:"acp"`

	Distributions   []RefundEarnings        `json:"distributions,omitempty"`
	AnnualAdditions []AnnualAdditionsResult `json:"annual_additions"`
	RefundImpacts   []RefundImpact          `json:"refund_impacts,omitempty"`
}

// TotalExcessAnnualAdditions sums the 415(c) excess across all participants
func (pr *PlanReport) TotalExcessAnnualAdditions() decimal.Decimal {
	total := decimal.Zero
	for _, aa := range pr.AnnualAdditions {
		total = total.Add(aa.Excess)
	}
	return total
}
