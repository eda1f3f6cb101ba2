package calculation

import (
	"fmt"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	ProngMultiple    = "1.25x"
	ProngAlternative = "2%/2x"
)

var (
	onePointTwoFive = decimal.NewFromFloat(1.25)
	twoPercent      = decimal.NewFromFloat(0.02)
	two             = decimal.NewFromInt(2)
)

// MaxAllowedHCERate returns the highest HCE average that still passes the
// ADP/ACP test for the given NHCE average, and which prong set it:
//
//	max(1.25 * nhce, min(nhce + 2%, 2 * nhce))
func MaxAllowedHCERate(nhceAverageRate decimal.Decimal) (decimal.Decimal, string) {
	limitA := nhceAverageRate.Mul(onePointTwoFive)
	limitB := decimal.Min(nhceAverageRate.Add(twoPercent), nhceAverageRate.Mul(two))
	if limitB.GreaterThan(limitA) {
		return limitB, ProngAlternative
	}
	return limitA, ProngMultiple
}

// testOptions collects the knobs for RunLevelingTest
type testOptions struct {
	kind         domain.TestKind
	strategy     domain.LevelingStrategy
	distribution domain.DistributionMethod
	logger       Logger
	maxIter      int
}

func newTestOptions(n int, opts []TestOption) testOptions {
	o := testOptions{
		kind:         domain.TestADP,
		strategy:     domain.LevelStaircase,
		distribution: domain.DistributeByRate,
		logger:       NopLogger{},
		maxIter:      n + 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TestOption customizes a leveling test run
type TestOption func(*testOptions)

// WithKind labels the result as an ADP or ACP test
func WithKind(kind domain.TestKind) TestOption {
	return func(o *testOptions) { o.kind = kind }
}

// WithStrategy picks the leveling strategy; empty keeps the staircase default
func WithStrategy(strategy domain.LevelingStrategy) TestOption {
	return func(o *testOptions) {
		if strategy != "" {
			o.strategy = strategy
		}
	}
}

// WithDistribution picks how the refund total is assigned; empty keeps rate
func WithDistribution(method domain.DistributionMethod) TestOption {
	return func(o *testOptions) {
		if method != "" {
			o.distribution = method
		}
	}
}

// WithLogger routes debug output from the test run
func WithLogger(logger Logger) TestOption {
	return func(o *testOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// withMaxIterations overrides the leveling iteration cap
func withMaxIterations(n int) TestOption {
	return func(o *testOptions) { o.maxIter = n }
}

// RunLevelingTest runs an ADP or ACP test over the HCE records and, when it
// fails, computes the corrective refunds by top-down leveling. records is
// never modified; Corrections come back in input order.
func RunLevelingTest(records []domain.ContributionRecord, nhceAverageRate decimal.Decimal, opts ...TestOption) (*domain.TestResult, error) {
	o := newTestOptions(len(records), opts)

	if err := validateRecords(records, nhceAverageRate); err != nil {
		return nil, err
	}
	switch o.strategy {
	case domain.LevelStaircase, domain.LevelDirectToTarget:
	default:
		return nil, &domain.InvalidInputError{Field: "strategy", Value: string(o.strategy), Reason: "unknown leveling strategy"}
	}
	switch o.distribution {
	case domain.DistributeByRate, domain.DistributeByDollar:
	default:
		return nil, &domain.InvalidInputError{Field: "distribution", Value: string(o.distribution), Reason: "unknown distribution method"}
	}

	result, rates, rateSum := summarizeTest(records, nhceAverageRate, o)
	n := decimal.NewFromInt(int64(len(records)))
	maxAllowed := result.MaxAllowedHCERate

	o.logger.Debugf("%s test: NHCE %s, HCE %s, max allowed %s (%s)",
		o.kind, nhceAverageRate.StringFixed(6), result.HCEAverageRate.StringFixed(6), maxAllowed.StringFixed(6), result.Prong)

	if result.Passed {
		return result, nil
	}

	// total rate mass above the limit
	excessRate := rateSum.Sub(maxAllowed.Mul(n))

	var rateCuts []decimal.Decimal
	if o.strategy == domain.LevelDirectToTarget {
		rateCuts = reduceToTarget(rates, maxAllowed)
		result.Iterations = 1
	} else {
		cuts, iterations, err := levelDown(rates, excessRate, o.maxIter, rateEpsilon)
		if err != nil {
			return nil, fmt.Errorf("%s leveling failed: %w", o.kind, err)
		}
		rateCuts = cuts
		result.Iterations = iterations
	}

	refunds := make([]decimal.Decimal, len(records))
	corrected := make([]decimal.Decimal, len(records))
	total := decimal.Zero
	for i, r := range records {
		refunds[i] = rateCuts[i].Mul(r.Compensation)
		corrected[i] = rates[i].Sub(rateCuts[i])
		total = total.Add(refunds[i])
	}

	// dollar leveling hands the same total to the largest contributions
	if o.distribution == domain.DistributeByDollar {
		amounts := make([]decimal.Decimal, len(records))
		for i, r := range records {
			amounts[i] = r.ContributionAmount
		}
		cuts, iterations, err := levelDown(amounts, total, o.maxIter, dollarEpsilon)
		if err != nil {
			return nil, fmt.Errorf("%s dollar distribution failed: %w", o.kind, err)
		}
		refunds = cuts
		for i, r := range records {
			corrected[i] = r.ContributionAmount.Sub(refunds[i]).Div(r.Compensation)
		}
		result.Iterations += iterations
	}

	correctedSum := decimal.Zero
	total = decimal.Zero
	for i := range records {
		c := &result.Corrections[i]
		c.RefundAmount = refunds[i]
		c.CorrectedRate = corrected[i]
		total = total.Add(refunds[i])
		correctedSum = correctedSum.Add(c.CorrectedRate)
	}
	result.TotalRequiredRefund = total
	result.CorrectedHCEAverageRate = correctedSum.Div(n)

	o.logger.Infof("%s test failed: %d of %d HCEs refunded, total %s after %d iterations",
		o.kind, result.RefundedCount(), len(records), total.StringFixed(2), result.Iterations)

	return result, nil
}

// summarizeTest computes the averages and limit for records and returns an
// uncorrected result along with each record's rate and the rate sum
func summarizeTest(records []domain.ContributionRecord, nhceAverageRate decimal.Decimal, o testOptions) (*domain.TestResult, []decimal.Decimal, decimal.Decimal) {
	rates := make([]decimal.Decimal, len(records))
	rateSum := decimal.Zero
	for i, r := range records {
		rates[i] = r.Rate()
		rateSum = rateSum.Add(rates[i])
	}

	maxAllowed, prong := MaxAllowedHCERate(nhceAverageRate)
	n := decimal.NewFromInt(int64(len(records)))
	hceAverage := decimal.Zero
	if len(records) > 0 {
		hceAverage = rateSum.Div(n)
	}

	result := &domain.TestResult{
		Kind:                    o.kind,
		NHCEAverageRate:         nhceAverageRate,
		HCEAverageRate:          hceAverage,
		MaxAllowedHCERate:       maxAllowed,
		Prong:                   prong,
		Passed:                  !rateSum.GreaterThan(maxAllowed.Mul(n)), // same as average <= max, without rounding the average
		TotalRequiredRefund:     decimal.Zero,
		CorrectedHCEAverageRate: hceAverage,
		Corrections:             make([]domain.CorrectionRecord, len(records)),
		Strategy:                o.strategy,
		Distribution:            o.distribution,
	}
	for i, r := range records {
		result.Corrections[i] = domain.CorrectionRecord{
			ID:            r.ID,
			Compensation:  r.Compensation,
			OriginalRate:  rates[i],
			CorrectedRate: rates[i],
			RefundAmount:  decimal.Zero,
		}
	}
	return result, rates, rateSum
}

func validateRecords(records []domain.ContributionRecord, nhceAverageRate decimal.Decimal) error {
	if len(records) == 0 {
		return &domain.InvalidInputError{Field: "records", Reason: "at least one record is required"}
	}
	if nhceAverageRate.IsNegative() {
		return domain.NewInvalidInput("nhceAverageRate", nhceAverageRate, "cannot be negative")
	}
	seen := make(map[string]bool, len(records))
	for i, r := range records {
		if r.ID == "" {
			return &domain.InvalidInputError{Field: fmt.Sprintf("records[%d].id", i), Reason: "id is required"}
		}
		if seen[r.ID] {
			return &domain.InvalidInputError{Field: fmt.Sprintf("records[%d].id", i), Value: r.ID, Reason: "duplicate id"}
		}
		seen[r.ID] = true
		if !r.Compensation.IsPositive() {
			return domain.NewInvalidInput(fmt.Sprintf("records[%d].compensation", i), r.Compensation, "must be positive")
		}
		if r.ContributionAmount.IsNegative() {
			return domain.NewInvalidInput(fmt.Sprintf("records[%d].contributionAmount", i), r.ContributionAmount, "cannot be negative")
		}
	}
	return nil
}
