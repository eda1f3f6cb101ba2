package compare

import (
	"context"
	"fmt"

	"github.com/rgehrsitz/tpacalc/internal/calculation"
	"github.com/rgehrsitz/tpacalc/internal/config"
	"github.com/rgehrsitz/tpacalc/internal/domain"
)

// CompareEngine runs one census under several correction methods
type CompareEngine struct {
	Snapshot          *config.Snapshot
	MetricsCalculator *MetricsCalculator
	Logger            calculation.Logger
}

// NewCompareEngine creates a new comparison engine
func NewCompareEngine(snapshot *config.Snapshot) *CompareEngine {
	return &CompareEngine{
		Snapshot:          snapshot,
		MetricsCalculator: NewMetricsCalculator(),
		Logger:            calculation.NopLogger{},
	}
}

// CompareOptions configures comparison behavior
type CompareOptions struct {
	Base         Method   // method the alternatives are measured against
	Alternatives []Method // defaults to every other known method
}

// Compare runs the census under the base method and each alternative
func (ce *CompareEngine) Compare(ctx context.Context, census *domain.Census, options CompareOptions) (*ComparisonSet, error) {
	base := options.Base
	if base == (Method{}) {
		base = DefaultMethod
	}
	alternatives := options.Alternatives
	if len(alternatives) == 0 {
		for _, m := range AllMethods() {
			if m != base {
				alternatives = append(alternatives, m)
			}
		}
	}

	baseReport, err := ce.run(ctx, census, base)
	if err != nil {
		return nil, fmt.Errorf("failed to run base method %s: %w", base.Name(), err)
	}
	baseResult := ce.MetricsCalculator.CalculateMetrics(base, baseReport)

	results := make([]ComparisonResult, 0, len(alternatives))
	for _, m := range alternatives {
		report, err := ce.run(ctx, census, m)
		if err != nil {
			return nil, fmt.Errorf("failed to run method %s: %w", m.Name(), err)
		}
		alt := ce.MetricsCalculator.CalculateMetrics(m, report)
		results = append(results, ce.MetricsCalculator.CalculateComparison(alt, baseResult))
	}

	compSet := &ComparisonSet{
		PlanName:           baseReport.PlanName,
		PlanYear:           baseReport.PlanYear,
		BaseResult:         &baseResult,
		AlternativeResults: results,
	}
	compSet.Recommendations = GenerateRecommendations(compSet)

	return compSet, nil
}

func (ce *CompareEngine) run(ctx context.Context, census *domain.Census, m Method) (*domain.PlanReport, error) {
	engine := calculation.NewEngine(ce.Snapshot)
	engine.Strategy = m.Strategy
	engine.Distribution = m.Distribution
	engine.SetLogger(ce.Logger)

	ce.Logger.Debugf("comparing method %s", m.Name())
	return engine.RunPlan(ctx, census)
}
