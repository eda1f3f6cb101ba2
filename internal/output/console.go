package output

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

// ConsoleFormatter renders a plan report as styled text
type ConsoleFormatter struct{}

// Format generates the console report
func (cf *ConsoleFormatter) Format(report *domain.PlanReport) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("no report to format")
	}

	var sb strings.Builder

	sb.WriteString(TitleStyle.Render(fmt.Sprintf("%s: PLAN YEAR %d COMPLIANCE", strings.ToUpper(report.PlanName), report.PlanYear)) + "\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("%s %d HCEs, %d NHCEs\n", LabelStyle.Render("Population:"), report.HCECount, report.NHCECount))
	if report.SafeHarbor {
		sb.WriteString(fmt.Sprintf("%s safe harbor, ADP/ACP testing waived\n", LabelStyle.Render("Plan design:")))
	}
	sb.WriteString("\n")

	for _, result := range []*domain.TestResult{report.ADP, report.ACP} {
		if result == nil {
			continue
		}
		sb.WriteString(TestResultText(result))
		sb.WriteString("\n")
	}

	if len(report.Distributions) > 0 {
		sb.WriteString(SectionStyle.Render("CORRECTIVE DISTRIBUTIONS") + "\n")
		sb.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-12s %-5s %14s %14s %14s", "ID", "Test", "Refund", "Earnings", "Total")) + "\n")
		sb.WriteString(strings.Repeat("-", 63) + "\n")
		for _, dist := range report.Distributions {
			sb.WriteString(fmt.Sprintf("%-12s %-5s %14s %14s %14s\n",
				dist.ID, dist.Kind,
				FormatCurrency(dist.Principal),
				FormatCurrency(dist.Earnings),
				FormatCurrency(dist.TotalToReturn)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(SectionStyle.Render("415(c) ANNUAL ADDITIONS") + "\n")
	over := 0
	for _, aa := range report.AnnualAdditions {
		if !aa.Excess.IsPositive() {
			continue
		}
		over++
		sb.WriteString(AnnualAdditionsText(&aa))
	}
	if over == 0 {
		sb.WriteString(fmt.Sprintf("All %d participants within their 415(c) limit\n", len(report.AnnualAdditions)))
	} else {
		sb.WriteString(fmt.Sprintf("%s %d participant(s), %s total excess\n",
			LabelStyle.Render("Over the limit:"), over, FormatCurrency(report.TotalExcessAnnualAdditions())))
	}

	if len(report.RefundImpacts) > 0 {
		sb.WriteString("\n" + SectionStyle.Render("ADP REFUND EFFECT ON 415(c)") + "\n")
		for _, impact := range report.RefundImpacts {
			sb.WriteString(RefundImpactText(&impact))
		}
	}

	return []byte(sb.String()), nil
}

// TestResultText renders one ADP or ACP result with its corrections
func TestResultText(result *domain.TestResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s\n", SectionStyle.Render(string(result.Kind)+" TEST"), StatusBadge(result.Passed, result.Waived)))
	sb.WriteString(fmt.Sprintf("  NHCE average:       %s\n", FormatRate(result.NHCEAverageRate)))
	sb.WriteString(fmt.Sprintf("  HCE average:        %s\n", FormatRate(result.HCEAverageRate)))
	sb.WriteString(fmt.Sprintf("  Maximum HCE:        %s (%s)\n", FormatRate(result.MaxAllowedHCERate), result.Prong))

	if result.Passed {
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  Corrected average:  %s\n", FormatRate(result.CorrectedHCEAverageRate)))
	sb.WriteString(fmt.Sprintf("  Total refund:       %s (%s, %s distribution, %d iterations)\n",
		FormatCurrency(result.TotalRequiredRefund), result.Strategy, result.Distribution, result.Iterations))
	sb.WriteString("\n")
	sb.WriteString(TableHeaderStyle.Render(fmt.Sprintf("  %-12s %14s %10s %10s %14s", "ID", "Compensation", "Original", "Corrected", "Refund")) + "\n")
	sb.WriteString("  " + strings.Repeat("-", 64) + "\n")
	for _, c := range result.Corrections {
		sb.WriteString(fmt.Sprintf("  %-12s %14s %10s %10s %14s\n",
			c.ID,
			FormatCurrency(c.Compensation),
			FormatRate(c.OriginalRate),
			FormatRate(c.CorrectedRate),
			FormatCurrency(c.RefundAmount)))
	}
	return sb.String()
}

// AnnualAdditionsText renders one participant's 415(c) waterfall
func AnnualAdditionsText(result *domain.AnnualAdditionsResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: additions %s, limit %s, excess %s\n",
		result.ParticipantID,
		FormatCurrency(result.TotalAnnualAdditions),
		FormatCurrency(result.Limit),
		FormatCurrency(result.Excess)))
	for i, step := range result.Steps {
		sb.WriteString(fmt.Sprintf("  %d. %-18s %-11s %14s\n", i+1, step.Bucket, step.Category, FormatCurrency(step.AmountRemoved)))
	}
	if len(result.Steps) > 0 {
		sb.WriteString(fmt.Sprintf("  Refunds (1099-R): %s   Forfeitures (415 suspense): %s\n",
			FormatCurrency(result.TotalRefunds), FormatCurrency(result.TotalForfeitures)))
	}
	return sb.String()
}

// RefundImpactText renders how an ADP refund moves a 415(c) position
func RefundImpactText(impact *domain.RefundImpact) string {
	status := "415(c) excess remains " + FormatCurrency(impact.PostRefundExcess)
	switch {
	case impact.ResolvedByRefund:
		status = PassStyle.Render("415(c) excess resolved by the ADP refund")
	case !impact.InitialExcess.IsPositive():
		status = "no 415(c) excess"
	}
	return fmt.Sprintf("%s: refund %s, additions %s -> %s, %s\n",
		impact.ParticipantID,
		FormatCurrency(impact.RefundAmount),
		FormatCurrency(impact.InitialAnnualAdditions),
		FormatCurrency(impact.PostRefundAnnualAdditions),
		status)
}

// RiskText renders a quick ADP/ACP margin check
func RiskText(risk *domain.RiskAssessment) string {
	var sb strings.Builder
	status := PassStyle.Render("PASSING")
	if !risk.Passing {
		status = FailStyle.Render("RISK OF FAILURE")
	}
	sb.WriteString(fmt.Sprintf("Status:           %s\n", status))
	sb.WriteString(fmt.Sprintf("NHCE average:     %s\n", FormatRate(risk.NHCEAverageRate)))
	sb.WriteString(fmt.Sprintf("HCE average:      %s\n", FormatRate(risk.HCEAverageRate)))
	sb.WriteString(fmt.Sprintf("Maximum HCE:      %s (%s)\n", FormatRate(risk.MaxAllowedHCERate), risk.Prong))
	if risk.Passing {
		sb.WriteString(fmt.Sprintf("Headroom:         %s\n", FormatRate(risk.Headroom)))
	} else {
		sb.WriteString(fmt.Sprintf("Shortfall:        %s\n", FormatRate(risk.Headroom.Neg())))
	}
	return sb.String()
}

// EarningsText renders a corrective distribution with allocable earnings
func EarningsText(excess, earnings, net decimal.Decimal) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Net gain/loss on account:  %s\n", FormatCurrency(net)))
	sb.WriteString(fmt.Sprintf("Excess to refund:          %s\n", FormatCurrency(excess)))
	sb.WriteString(fmt.Sprintf("Allocable earnings:        %s\n", FormatCurrency(earnings)))
	sb.WriteString(fmt.Sprintf("Total distribution:        %s\n", FormatCurrency(excess.Add(earnings))))
	return sb.String()
}
