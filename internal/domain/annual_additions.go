package domain

import (
	"github.com/shopspring/decimal"
)

// Bucket names a 415(c) contribution source
type Bucket string

const (
	BucketAfterTax         Bucket = "afterTax"
	BucketElectiveDeferral Bucket = "electiveDeferral"
	BucketEmployerMatch    Bucket = "employerMatch"
	BucketProfitSharing    Bucket = "profitSharing"
	BucketForfeitures      Bucket = "forfeitures"
)

// CorrectionCategory tells whether removed money goes back to the participant
// (reported on a 1099-R) or to the plan's 415 suspense account
type CorrectionCategory string

const (
	CategoryRefund     CorrectionCategory = "refund"
	CategoryForfeiture CorrectionCategory = "forfeiture"
)

// AnnualAdditionsCase is one participant's 415(c) input
type AnnualAdditionsCase struct {
	ParticipantID        string          `yaml:"participant_id" json:"participant_id"`
	Compensation         decimal.Decimal `yaml:"compensation" json:"compensation"`
	StatutoryDollarLimit decimal.Decimal `yaml:"statutory_dollar_limit" json:"statutory_dollar_limit"`

	AfterTax         decimal.Decimal `yaml:"after_tax" json:"after_tax"`
	ElectiveDeferral decimal.Decimal `yaml:"elective_deferral" json:"elective_deferral"`
	EmployerMatch    decimal.Decimal `yaml:"employer_match" json:"employer_match"`
	ProfitSharing    decimal.Decimal `yaml:"profit_sharing" json:"profit_sharing"`
	Forfeitures      decimal.Decimal `yaml:"forfeitures" json:"forfeitures"`

	// StatedExcess replaces the computed excess when an excess was determined
	// outside this calculation (e.g. on audit)
	StatedExcess *decimal.Decimal `yaml:"stated_excess,omitempty" json:"stated_excess,omitempty"`
}

// Limit is the lesser of the statutory dollar limit and 100% of compensation
func (c AnnualAdditionsCase) Limit() decimal.Decimal {
	return decimal.Min(c.StatutoryDollarLimit, c.Compensation)
}

// TotalAnnualAdditions sums every bucket
func (c AnnualAdditionsCase) TotalAnnualAdditions() decimal.Decimal {
	return c.AfterTax.
		Add(c.ElectiveDeferral).
		Add(c.EmployerMatch).
		Add(c.ProfitSharing).
		Add(c.Forfeitures)
}

// Excess returns the stated excess if one was given, otherwise
// max(0, total annual additions - limit)
func (c AnnualAdditionsCase) Excess() decimal.Decimal {
	if c.StatedExcess != nil {
		return *c.StatedExcess
	}
	return decimal.Max(decimal.Zero, c.TotalAnnualAdditions().Sub(c.Limit()))
}

// BucketAmount returns the dollars held in the named bucket
func (c AnnualAdditionsCase) BucketAmount(b Bucket) decimal.Decimal {
	switch b {
	case BucketAfterTax:
		return c.AfterTax
	case BucketElectiveDeferral:
		return c.ElectiveDeferral
	case BucketEmployerMatch:
		return c.EmployerMatch
	case BucketProfitSharing:
		return c.ProfitSharing
	case BucketForfeitures:
		return c.Forfeitures
	default:
		return decimal.Zero
	}
}

// CorrectionStep is one applied step of the 415(c) correction waterfall
type CorrectionStep struct {
	Bucket        Bucket             `json:"bucket"`
	AmountRemoved decimal.Decimal    `json:"amount_removed"`
	Category      CorrectionCategory `json:"category"`
}

// AnnualAdditionsResult wraps the waterfall output with the figures it was derived from
type AnnualAdditionsResult struct {
	ParticipantID        string           `json:"participant_id"`
	Limit                decimal.Decimal  `json:"limit"`
	TotalAnnualAdditions decimal.Decimal  `json:"total_annual_additions"`
	Excess               decimal.Decimal  `json:"excess"`
	Steps                []CorrectionStep `json:"steps"`
	TotalRefunds         decimal.Decimal  `json:"total_refunds"`     // 1099-R
	TotalForfeitures     decimal.Decimal  `json:"total_forfeitures"` // 415 suspense account
}

// SumSteps totals the amount removed by steps of the given category.
// An empty category sums every step.
func SumSteps(steps []CorrectionStep, category CorrectionCategory) decimal.Decimal {
	total := decimal.Zero
	for _, s := range steps {
		if category == "" || s.Category == category {
			total = total.Add(s.AmountRemoved)
		}
	}
	return total
}

// RefundImpact shows how an ADP refund of elective deferrals changes a 415(c) position
type RefundImpact struct {
	ParticipantID              string          `json:"participant_id"`
	RefundAmount               decimal.Decimal `json:"refund_amount"`
	Limit                      decimal.Decimal `json:"limit"`
	InitialAnnualAdditions     decimal.Decimal `json:"initial_annual_additions"`
	InitialExcess              decimal.Decimal `json:"initial_excess"`
	PostRefundElectiveDeferral decimal.Decimal `json:"post_refund_elective_deferral"`
	PostRefundAnnualAdditions  decimal.Decimal `json:"post_refund_annual_additions"`
	PostRefundExcess           decimal.Decimal `json:"post_refund_excess"`
	ResolvedByRefund           bool            `json:"resolved_by_refund"`
}
