package calculation

import (
	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

// waterfallTier is one priority level of the 415(c) correction. Buckets in
// the same tier share a single cap and are drawn in the order listed.
type waterfallTier struct {
	buckets  []domain.Bucket
	category domain.CorrectionCategory
}

// correctionOrder refunds employee money before forfeiting employer money
var correctionOrder = []waterfallTier{
	{buckets: []domain.Bucket{domain.BucketAfterTax}, category: domain.CategoryRefund},
	{buckets: []domain.Bucket{domain.BucketElectiveDeferral}, category: domain.CategoryRefund},
	{buckets: []domain.Bucket{domain.BucketEmployerMatch}, category: domain.CategoryForfeiture},
	{buckets: []domain.Bucket{domain.BucketProfitSharing, domain.BucketForfeitures}, category: domain.CategoryForfeiture},
}

// CorrectAnnualAdditions removes a participant's 415(c) excess bucket by
// bucket. Only buckets that give up money produce a step. When the buckets
// cannot cover the excess it returns an UnresolvedExcessError carrying the
// residual and the steps applied so far.
func CorrectAnnualAdditions(c domain.AnnualAdditionsCase) ([]domain.CorrectionStep, error) {
	if err := validateCase(c); err != nil {
		return nil, err
	}

	remaining := c.Excess()
	steps := make([]domain.CorrectionStep, 0, 4)

	for _, tier := range correctionOrder {
		if !remaining.IsPositive() {
			break
		}
		available := decimal.Zero
		for _, b := range tier.buckets {
			available = available.Add(c.BucketAmount(b))
		}
		take := decimal.Min(remaining, available)

		for _, b := range tier.buckets {
			if !take.IsPositive() {
				break
			}
			removed := decimal.Min(take, c.BucketAmount(b))
			if !removed.IsPositive() {
				continue
			}
			steps = append(steps, domain.CorrectionStep{
				Bucket:        b,
				AmountRemoved: removed,
				Category:      tier.category,
			})
			take = take.Sub(removed)
			remaining = remaining.Sub(removed)
		}
	}

	if remaining.IsPositive() {
		return nil, &domain.UnresolvedExcessError{Residual: remaining, Steps: steps}
	}
	return steps, nil
}

// EvaluateAnnualAdditions runs the waterfall and reports it alongside the
// limit, the total and the refund/forfeiture split
func EvaluateAnnualAdditions(c domain.AnnualAdditionsCase) (*domain.AnnualAdditionsResult, error) {
	steps, err := CorrectAnnualAdditions(c)
	if err != nil {
		return nil, err
	}
	return &domain.AnnualAdditionsResult{
		ParticipantID:        c.ParticipantID,
		Limit:                c.Limit(),
		TotalAnnualAdditions: c.TotalAnnualAdditions(),
		Excess:               c.Excess(),
		Steps:                steps,
		TotalRefunds:         domain.SumSteps(steps, domain.CategoryRefund),
		TotalForfeitures:     domain.SumSteps(steps, domain.CategoryForfeiture),
	}, nil
}

// AnalyzeRefundImpact shows what an ADP refund of elective deferrals does to
// the participant's 415(c) position. The refund comes out of the deferral
// bucket only and never takes it below zero.
func AnalyzeRefundImpact(c domain.AnnualAdditionsCase, adpRefund decimal.Decimal) (*domain.RefundImpact, error) {
	if err := validateCase(c); err != nil {
		return nil, err
	}
	if adpRefund.IsNegative() {
		return nil, domain.NewInvalidInput("adpRefund", adpRefund, "cannot be negative")
	}

	after := c
	after.ElectiveDeferral = decimal.Max(decimal.Zero, c.ElectiveDeferral.Sub(adpRefund))
	after.StatedExcess = nil

	initialExcess := c.Excess()
	postExcess := after.Excess()

	return &domain.RefundImpact{
		ParticipantID:              c.ParticipantID,
		RefundAmount:               adpRefund,
		Limit:                      c.Limit(),
		InitialAnnualAdditions:     c.TotalAnnualAdditions(),
		InitialExcess:              initialExcess,
		PostRefundElectiveDeferral: after.ElectiveDeferral,
		PostRefundAnnualAdditions:  after.TotalAnnualAdditions(),
		PostRefundExcess:           postExcess,
		ResolvedByRefund:           initialExcess.IsPositive() && postExcess.IsZero(),
	}, nil
}

func validateCase(c domain.AnnualAdditionsCase) error {
	if !c.Compensation.IsPositive() {
		return domain.NewInvalidInput("compensation", c.Compensation, "must be positive")
	}
	if !c.StatutoryDollarLimit.IsPositive() {
		return domain.NewInvalidInput("statutoryDollarLimit", c.StatutoryDollarLimit, "must be positive")
	}
	for _, b := range []domain.Bucket{
		domain.BucketAfterTax,
		domain.BucketElectiveDeferral,
		domain.BucketEmployerMatch,
		domain.BucketProfitSharing,
		domain.BucketForfeitures,
	} {
		if v := c.BucketAmount(b); v.IsNegative() {
			return domain.NewInvalidInput(string(b), v, "cannot be negative")
		}
	}
	if c.StatedExcess != nil && c.StatedExcess.IsNegative() {
		return domain.NewInvalidInput("statedExcess", *c.StatedExcess, "cannot be negative")
	}
	return nil
}
