package output

import (
	"encoding/csv"
	"strings"

	"github.com/rgehrsitz/tpacalc/internal/domain"
)

// CSVFormatter writes one row per correction and one row per 415(c) step
type CSVFormatter struct{}

// Format generates CSV output for a plan report
func (cf *CSVFormatter) Format(report *domain.PlanReport) ([]byte, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Section",
		"ID",
		"Test",
		"Original Rate",
		"Corrected Rate",
		"Refund",
		"Earnings",
		"Bucket",
		"Category",
		"Amount Removed",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	earnings := make(map[string]domain.RefundEarnings, len(report.Distributions))
	for _, dist := range report.Distributions {
		earnings[string(dist.Kind)+"/"+dist.ID] = dist
	}

	for _, result := range []*domain.TestResult{report.ADP, report.ACP} {
		if result == nil {
			continue
		}
		for _, c := range result.Corrections {
			dist := earnings[string(result.Kind)+"/"+c.ID]
			row := []string{
				"correction",
				c.ID,
				string(result.Kind),
				c.OriginalRate.StringFixed(6),
				c.CorrectedRate.StringFixed(6),
				c.RefundAmount.StringFixed(2),
				dist.Earnings.StringFixed(2),
				"", "", "",
			}
			if err := writer.Write(row); err != nil {
				return nil, err
			}
		}
	}

	for _, aa := range report.AnnualAdditions {
		for _, step := range aa.Steps {
			row := []string{
				"415c",
				aa.ParticipantID,
				"", "", "", "", "",
				string(step.Bucket),
				string(step.Category),
				step.AmountRemoved.StringFixed(2),
			}
			if err := writer.Write(row); err != nil {
				return nil, err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return []byte(sb.String()), nil
}
