package compare

import (
	"strings"
	"testing"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"staircase", DefaultMethod, false},
		{"staircase/dollar", Method{Strategy: domain.LevelStaircase, Distribution: domain.DistributeByDollar}, false},
		{"direct_to_target/rate", Method{Strategy: domain.LevelDirectToTarget, Distribution: domain.DistributeByRate}, false},
		{"direct_to_target/dollar", Method{Strategy: domain.LevelDirectToTarget, Distribution: domain.DistributeByDollar}, false},
		{"zigzag", Method{}, true},
		{"staircase/coins", Method{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseMethod(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseMethod(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAllMethods(t *testing.T) {
	methods := AllMethods()
	if len(methods) != 4 {
		t.Fatalf("Expected 4 methods, got %d", len(methods))
	}
	if methods[0] != DefaultMethod {
		t.Errorf("Expected default method first, got %s", methods[0].Name())
	}
	if DefaultMethod.Name() != "staircase/rate" {
		t.Errorf("Expected staircase/rate, got %s", DefaultMethod.Name())
	}
}

func TestMetricsCalculator_CalculateMetrics(t *testing.T) {
	calc := NewMetricsCalculator()

	report := &domain.PlanReport{
		ADP: &domain.TestResult{
			Passed:                  false,
			HCEAverageRate:          decimal.NewFromFloat(0.06),
			TotalRequiredRefund:     decimal.NewFromInt(6000),
			CorrectedHCEAverageRate: decimal.NewFromFloat(0.05),
		},
		ACP: &domain.TestResult{
			Passed:              true,
			HCEAverageRate:      decimal.NewFromFloat(0.02),
			TotalRequiredRefund: decimal.Zero,
		},
		Distributions: []domain.RefundEarnings{
			{ID: "hce-1", Kind: domain.TestADP, Principal: decimal.NewFromInt(5000), Earnings: decimal.NewFromInt(500), TotalToReturn: decimal.NewFromInt(5500)},
			{ID: "hce-2", Kind: domain.TestADP, Principal: decimal.NewFromInt(1000), Earnings: decimal.Zero, TotalToReturn: decimal.NewFromInt(1000)},
			{ID: "hce-1", Kind: domain.TestACP, Principal: decimal.NewFromInt(200), Earnings: decimal.NewFromInt(20), TotalToReturn: decimal.NewFromInt(220)},
		},
	}

	result := calc.CalculateMetrics(DefaultMethod, report)

	if !result.TotalRefund.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("Expected total refund 6000, got %s", result.TotalRefund)
	}
	if !result.TotalEarnings.Equal(decimal.NewFromInt(520)) {
		t.Errorf("Expected earnings 520, got %s", result.TotalEarnings)
	}
	if !result.TotalDistributed.Equal(decimal.NewFromInt(6720)) {
		t.Errorf("Expected total distributed 6720, got %s", result.TotalDistributed)
	}
	// hce-1 appears under both tests but counts once
	if result.RefundedHCEs != 2 {
		t.Errorf("Expected 2 refunded HCEs, got %d", result.RefundedHCEs)
	}
	if !result.ADPCorrectedAverage.Equal(decimal.NewFromFloat(0.05)) {
		t.Errorf("Expected ADP corrected average 0.05, got %s", result.ADPCorrectedAverage)
	}
	if !result.ACPCorrectedAverage.Equal(decimal.NewFromFloat(0.02)) {
		t.Errorf("Expected passed ACP to keep its average, got %s", result.ACPCorrectedAverage)
	}
}

func TestMetricsCalculator_CalculateComparison(t *testing.T) {
	calc := NewMetricsCalculator()

	base := ComparisonResult{Method: DefaultMethod, TotalRefund: decimal.NewFromInt(6000), RefundedHCEs: 2}
	alt := ComparisonResult{
		Method:       Method{Strategy: domain.LevelDirectToTarget, Distribution: domain.DistributeByRate},
		TotalRefund:  decimal.NewFromInt(8000),
		RefundedHCEs: 2,
	}

	got := calc.CalculateComparison(alt, base)

	if !got.RefundDiffFromBase.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("Expected diff 2000, got %s", got.RefundDiffFromBase)
	}
	if got.RefundPctFromBase.StringFixed(2) != "33.33" {
		t.Errorf("Expected 33.33%%, got %s", got.RefundPctFromBase.StringFixed(2))
	}
	if got.RefundedHCEsDiff != 0 {
		t.Errorf("Expected no HCE diff, got %d", got.RefundedHCEsDiff)
	}

	zeroBase := ComparisonResult{TotalRefund: decimal.Zero}
	if got := calc.CalculateComparison(alt, zeroBase); !got.RefundPctFromBase.IsZero() {
		t.Errorf("Expected zero percentage against a zero base, got %s", got.RefundPctFromBase)
	}
}

func TestGenerateRecommendations(t *testing.T) {
	t.Run("over_correction_and_fewest", func(t *testing.T) {
		compSet := &ComparisonSet{
			BaseResult: &ComparisonResult{Method: DefaultMethod, TotalRefund: decimal.NewFromInt(6000), RefundedHCEs: 2},
			AlternativeResults: []ComparisonResult{
				{
					Method:             Method{Strategy: domain.LevelDirectToTarget, Distribution: domain.DistributeByRate},
					TotalRefund:        decimal.NewFromInt(8000),
					RefundedHCEs:       2,
					RefundDiffFromBase: decimal.NewFromInt(2000),
				},
				{
					Method:       Method{Strategy: domain.LevelStaircase, Distribution: domain.DistributeByDollar},
					TotalRefund:  decimal.NewFromInt(6000),
					RefundedHCEs: 1,
				},
			},
		}

		recs := GenerateRecommendations(compSet)
		if len(recs) != 2 {
			t.Fatalf("Expected 2 recommendations, got %d: %v", len(recs), recs)
		}
		if !strings.Contains(recs[0], "Over-correction: direct_to_target/rate refunds $2000.00 more than staircase/rate") {
			t.Errorf("Unexpected over-correction text: %s", recs[0])
		}
		if !strings.Contains(recs[1], "Fewest HCEs Affected: staircase/dollar refunds 1 HCE(s) instead of 2") {
			t.Errorf("Unexpected fewest text: %s", recs[1])
		}
	})

	t.Run("lowest_refund", func(t *testing.T) {
		compSet := &ComparisonSet{
			BaseResult: &ComparisonResult{Method: Method{Strategy: domain.LevelDirectToTarget, Distribution: domain.DistributeByRate}, TotalRefund: decimal.NewFromInt(8000), RefundedHCEs: 2},
			AlternativeResults: []ComparisonResult{
				{Method: DefaultMethod, TotalRefund: decimal.NewFromInt(6000), RefundedHCEs: 2, RefundDiffFromBase: decimal.NewFromInt(-2000)},
			},
		}

		recs := GenerateRecommendations(compSet)
		if len(recs) != 1 || !strings.HasPrefix(recs[0], "Lowest Refund: staircase/rate returns $2000.00 less") {
			t.Errorf("Unexpected recommendations: %v", recs)
		}
	})

	t.Run("nothing_to_refund", func(t *testing.T) {
		compSet := &ComparisonSet{BaseResult: &ComparisonResult{Method: DefaultMethod, TotalRefund: decimal.Zero}}
		recs := GenerateRecommendations(compSet)
		if len(recs) != 1 || !strings.Contains(recs[0], "No corrective refunds") {
			t.Errorf("Unexpected recommendations: %v", recs)
		}
	})

	t.Run("no_base", func(t *testing.T) {
		if recs := GenerateRecommendations(&ComparisonSet{}); len(recs) != 0 {
			t.Errorf("Expected no recommendations, got %v", recs)
		}
	})
}
