package compare

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/tpacalc/internal/output"
	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table
type TableFormatter struct{}

// Format generates a table comparing correction methods
func (tf *TableFormatter) Format(compSet *ComparisonSet) string {
	var sb strings.Builder

	sb.WriteString(output.TitleStyle.Render("CORRECTION METHOD COMPARISON") + "\n")
	sb.WriteString(strings.Repeat("=", 80) + "\n")
	sb.WriteString(fmt.Sprintf("Plan: %s (%d)\n", compSet.PlanName, compSet.PlanYear))
	if compSet.CensusPath != "" {
		sb.WriteString(fmt.Sprintf("Census: %s\n", compSet.CensusPath))
	}
	sb.WriteString("\n")

	nameWidth := 28
	numWidth := 12

	sb.WriteString(output.TableHeaderStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s %*s",
		nameWidth, "Method",
		numWidth, "ADP Refund",
		numWidth, "ACP Refund",
		numWidth, "Earnings",
		numWidth, "HCEs")) + "\n")
	sb.WriteString(strings.Repeat("-", 80) + "\n")

	if compSet.BaseResult != nil {
		sb.WriteString(tf.formatRow(compSet.BaseResult, nameWidth, numWidth, true))
	}

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 80) + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(tf.formatRow(&alt, nameWidth, numWidth, false))
		}
	}

	sb.WriteString(strings.Repeat("=", 80) + "\n")

	if len(compSet.AlternativeResults) > 0 {
		sb.WriteString("\n" + output.SectionStyle.Render("COMPARISON TO BASE") + "\n")
		for _, alt := range compSet.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.Method.Name()))
			sb.WriteString(fmt.Sprintf("  Total Refund:     %s$%s (%s%%)\n",
				tf.deltaSymbol(alt.RefundDiffFromBase),
				alt.RefundDiffFromBase.Abs().StringFixed(2),
				alt.RefundPctFromBase.StringFixed(1)))
			if alt.RefundedHCEsDiff != 0 {
				sb.WriteString(fmt.Sprintf("  HCEs Refunded:    %+d\n", alt.RefundedHCEsDiff))
			}
		}
		sb.WriteString("\n")
	}

	if len(compSet.Recommendations) > 0 {
		sb.WriteString("\n" + output.SectionStyle.Render("RECOMMENDATIONS") + "\n")
		for _, rec := range compSet.Recommendations {
			sb.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatRow formats a single method row
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.Method.Name()
	if isBase {
		name += " (base)"
	}

	return fmt.Sprintf("%-*s %*s %*s %*s %*d\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, output.FormatCurrency(result.ADPRefund),
		numWidth, output.FormatCurrency(result.ACPRefund),
		numWidth, output.FormatCurrency(result.TotalEarnings),
		numWidth, result.RefundedHCEs)
}

// deltaSymbol returns + or - for a delta, blank for zero
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a single-line summary of every method's total refund
func (tf *TableFormatter) FormatCompact(compSet *ComparisonSet) string {
	var sb strings.Builder

	if compSet.BaseResult != nil {
		sb.WriteString(fmt.Sprintf("Base: %s %s | ",
			compSet.BaseResult.Method.Name(), output.FormatCurrency(compSet.BaseResult.TotalRefund)))
	}

	for i, alt := range compSet.AlternativeResults {
		if i > 0 {
			sb.WriteString(" | ")
		}
		change := "="
		if !alt.RefundDiffFromBase.IsZero() {
			change = tf.deltaSymbol(alt.RefundDiffFromBase) + output.FormatCurrency(alt.RefundDiffFromBase.Abs())
		}
		sb.WriteString(fmt.Sprintf("%s: %s", alt.Method.Name(), change))
	}

	return sb.String()
}
