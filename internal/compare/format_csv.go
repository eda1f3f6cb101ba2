package compare

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// CSVFormatter formats comparison results as CSV
type CSVFormatter struct{}

// Format generates CSV output for comparison results
func (cf *CSVFormatter) Format(compSet *ComparisonSet) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Method",
		"Type",
		"ADP Refund",
		"ACP Refund",
		"Total Refund",
		"Earnings",
		"Total Distributed",
		"HCEs Refunded",
		"Refund Diff from Base",
		"Refund % Change",
		"HCEs Refunded Diff",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if compSet.BaseResult != nil {
		if err := writer.Write(cf.formatRow(compSet.BaseResult, "base")); err != nil {
			return "", err
		}
	}

	for _, alt := range compSet.AlternativeResults {
		if err := writer.Write(cf.formatRow(&alt, "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func (cf *CSVFormatter) formatRow(result *ComparisonResult, kind string) []string {
	return []string{
		result.Method.Name(),
		kind,
		result.ADPRefund.StringFixed(2),
		result.ACPRefund.StringFixed(2),
		result.TotalRefund.StringFixed(2),
		result.TotalEarnings.StringFixed(2),
		result.TotalDistributed.StringFixed(2),
		strconv.Itoa(result.RefundedHCEs),
		result.RefundDiffFromBase.StringFixed(2),
		result.RefundPctFromBase.StringFixed(2),
		strconv.Itoa(result.RefundedHCEsDiff),
	}
}
