package calculation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgehrsitz/tpacalc/internal/config"
	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Engine runs a full plan-year compliance pass over a census
type Engine struct {
	Snapshot     *config.Snapshot
	Strategy     domain.LevelingStrategy
	Distribution domain.DistributionMethod
	Logger       Logger
}

// NewEngine creates an engine bound to one configuration snapshot
func NewEngine(snapshot *config.Snapshot) *Engine {
	return &Engine{
		Snapshot:     snapshot,
		Strategy:     domain.LevelStaircase,
		Distribution: domain.DistributeByRate,
		Logger:       NopLogger{},
	}
}

// SetLogger sets the logger; nil restores the no-op logger
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		e.Logger = NopLogger{}
		return
	}
	e.Logger = l
}

// classified is one census row with its testing figures worked out
type classified struct {
	employee   domain.Employee
	hce        bool
	testComp   decimal.Decimal // capped at 401(a)(17)
	catchUp    decimal.Decimal
	adpAmount  decimal.Decimal
	acpAmount  decimal.Decimal
	annualCase domain.AnnualAdditionsCase
}

// RunPlan classifies the census, runs the ADP and ACP tests with corrections,
// grows refunds by allocable earnings and runs every participant through the
// 415(c) waterfall
func (e *Engine) RunPlan(ctx context.Context, census *domain.Census) (*domain.PlanReport, error) {
	if e.Snapshot == nil {
		return nil, fmt.Errorf("engine has no configuration snapshot")
	}
	if census == nil || len(census.Employees) == 0 {
		return nil, &domain.InvalidInputError{Field: "employees", Reason: "at least one employee is required"}
	}

	rows := make([]classified, 0, len(census.Employees))
	seen := make(map[string]bool, len(census.Employees))
	for i, emp := range census.Employees {
		if err := checkEmployee(i, emp, seen); err != nil {
			return nil, err
		}
		rows = append(rows, e.classify(emp))
	}

	report := &domain.PlanReport{
		PlanName:   e.Snapshot.PlanName(),
		PlanYear:   census.PlanYear,
		SafeHarbor: e.Snapshot.SafeHarbor(),
		Limits:     e.Snapshot.Limits(),
	}
	for _, row := range rows {
		if row.hce {
			report.HCECount++
		} else {
			report.NHCECount++
		}
	}
	e.Logger.Infof("plan year %d: %d HCEs, %d NHCEs", census.PlanYear, report.HCECount, report.NHCECount)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var err error
	report.ADP, err = e.runTest(domain.TestADP, rows, census.NHCEAverageADP, func(r classified) decimal.Decimal { return r.adpAmount })
	if err != nil {
		return nil, err
	}
	report.ACP, err = e.runTest(domain.TestACP, rows, census.NHCEAverageACP, func(r classified) decimal.Decimal { return r.acpAmount })
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	byID := make(map[string]classified, len(rows))
	for _, row := range rows {
		byID[row.employee.ID] = row
	}
	for _, result := range []*domain.TestResult{report.ADP, report.ACP} {
		for _, c := range result.Corrections {
			if !c.RefundAmount.IsPositive() {
				continue
			}
			dist, err := e.distribution(byID[c.ID].employee, result.Kind, c.RefundAmount)
			if err != nil {
				return nil, err
			}
			report.Distributions = append(report.Distributions, dist)
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	report.AnnualAdditions = make([]domain.AnnualAdditionsResult, 0, len(rows))
	for _, row := range rows {
		aa, err := EvaluateAnnualAdditions(row.annualCase)
		if err != nil {
			return nil, fmt.Errorf("415(c) correction for %s: %w", row.employee.ID, err)
		}
		if aa.Excess.IsPositive() {
			e.Logger.Warnf("%s exceeds 415(c) limit by %s", row.employee.ID, aa.Excess.StringFixed(2))
		}
		report.AnnualAdditions = append(report.AnnualAdditions, *aa)

		if !row.hce {
			continue
		}
		refund := report.ADP.RefundFor(row.employee.ID)
		if !refund.IsPositive() {
			continue
		}
		impact, err := AnalyzeRefundImpact(row.annualCase, refund)
		if err != nil {
			return nil, fmt.Errorf("refund impact for %s: %w", row.employee.ID, err)
		}
		report.RefundImpacts = append(report.RefundImpacts, *impact)
	}

	return report, nil
}

func (e *Engine) classify(emp domain.Employee) classified {
	row := classified{
		employee: emp,
		hce:      emp.Owner || emp.LookbackCompensation().GreaterThan(e.Snapshot.HCECompTest()),
		testComp: decimal.Min(emp.Compensation, e.Snapshot.CompMax()),
		catchUp:  decimal.Zero,
	}
	if emp.CatchUpEligible() {
		over := decimal.Max(decimal.Zero, emp.ElectiveDeferral.Sub(e.Snapshot.Deferral402g()))
		row.catchUp = decimal.Min(over, e.Snapshot.CatchUp())
	}
	row.adpAmount = emp.ElectiveDeferral.Sub(row.catchUp)
	row.acpAmount = emp.EmployerMatch.Add(emp.AfterTax)
	row.annualCase = domain.AnnualAdditionsCase{
		ParticipantID:        emp.ID,
		Compensation:         row.testComp,
		StatutoryDollarLimit: e.Snapshot.Section415c(),
		AfterTax:             emp.AfterTax,
		ElectiveDeferral:     row.adpAmount, // catch-up is not an annual addition
		EmployerMatch:        emp.EmployerMatch,
		ProfitSharing:        emp.ProfitSharing,
		Forfeitures:          emp.Forfeitures,
	}
	return row
}

// runTest builds the HCE records for one test and runs it, or waives it for
// a safe harbor plan
func (e *Engine) runTest(kind domain.TestKind, rows []classified, override *decimal.Decimal, amount func(classified) decimal.Decimal) (*domain.TestResult, error) {
	var hces []domain.ContributionRecord
	nhceSum := decimal.Zero
	nhceCount := 0
	for _, row := range rows {
		rec := domain.ContributionRecord{
			ID:                 row.employee.ID,
			Compensation:       row.testComp,
			ContributionAmount: amount(row),
		}
		if row.hce {
			hces = append(hces, rec)
			continue
		}
		nhceSum = nhceSum.Add(rec.Rate())
		nhceCount++
	}

	var nhceAverage decimal.Decimal
	switch {
	case override != nil:
		nhceAverage = *override
	case nhceCount > 0:
		nhceAverage = nhceSum.Div(decimal.NewFromInt(int64(nhceCount)))
	default:
		return nil, &domain.InvalidInputError{
			Field:  "nhce_average_" + strings.ToLower(string(kind)),
			Reason: "census has no NHCEs and no NHCE average was given",
		}
	}

	opts := []TestOption{
		WithKind(kind),
		WithStrategy(e.Strategy),
		WithDistribution(e.Distribution),
		WithLogger(e.Logger),
	}

	if e.Snapshot.SafeHarbor() || len(hces) == 0 {
		result, _, _ := summarizeTest(hces, nhceAverage, newTestOptions(len(hces), opts))
		result.Passed = true
		result.Waived = e.Snapshot.SafeHarbor()
		if result.Waived {
			e.Logger.Infof("%s test waived for safe harbor plan", kind)
		}
		return result, nil
	}

	result, err := RunLevelingTest(hces, nhceAverage, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s test: %w", kind, err)
	}
	return result, nil
}

// distribution pairs a refund with its allocable earnings when the census
// carries account activity for the employee
func (e *Engine) distribution(emp domain.Employee, kind domain.TestKind, principal decimal.Decimal) (domain.RefundEarnings, error) {
	dist := domain.RefundEarnings{
		ID:            emp.ID,
		Kind:          kind,
		Principal:     principal,
		Earnings:      decimal.Zero,
		TotalToReturn: principal,
	}
	if emp.Account == nil {
		return dist, nil
	}
	earnings, _, err := AllocableEarnings(principal, emp.Account.BeginningBalance, emp.Account.Contributions, emp.Account.EndingBalance)
	if err != nil {
		return dist, fmt.Errorf("earnings on %s refund for %s: %w", kind, emp.ID, err)
	}
	dist.Earnings = earnings
	dist.TotalToReturn = principal.Add(earnings)
	return dist, nil
}

// checkEmployee rejects rows that would make per-participant results ambiguous
// or negative
func checkEmployee(i int, emp domain.Employee, seen map[string]bool) error {
	field := func(name string) string { return fmt.Sprintf("employees[%d].%s", i, name) }

	switch {
	case emp.ID == "":
		return &domain.InvalidInputError{Field: field("id"), Reason: "id is required"}
	case seen[emp.ID]:
		return &domain.InvalidInputError{Field: field("id"), Value: emp.ID, Reason: "duplicate employee id"}
	case !emp.Compensation.IsPositive():
		return domain.NewInvalidInput(field("compensation"), emp.Compensation, "must be positive")
	case emp.Age < 0 || emp.Age > 120:
		return &domain.InvalidInputError{Field: field("age"), Value: fmt.Sprintf("%d", emp.Age), Reason: "must be between 0 and 120"}
	}
	seen[emp.ID] = true

	amounts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"elective_deferral", emp.ElectiveDeferral},
		{"employer_match", emp.EmployerMatch},
		{"after_tax", emp.AfterTax},
		{"profit_sharing", emp.ProfitSharing},
		{"forfeitures", emp.Forfeitures},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return domain.NewInvalidInput(field(a.name), a.value, "cannot be negative")
		}
	}
	return nil
}
