package output

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Formatter renders a plan report
type Formatter interface {
	Format(report *domain.PlanReport) ([]byte, error)
}

// GetFormatterByName returns the formatter for console, json or csv
func GetFormatterByName(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "console", "table":
		return &ConsoleFormatter{}, nil
	case "json":
		return &JSONFormatter{Pretty: true}, nil
	case "csv":
		return &CSVFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a value that is already a percentage
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// FormatRate formats a fraction (0.055) as a percentage (5.50%)
func FormatRate(rate decimal.Decimal) string {
	return rate.Mul(hundred).StringFixed(2) + "%"
}
