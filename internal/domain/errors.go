package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidInputError reports malformed or out-of-domain input
type InvalidInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid input %s=%s: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid input %s: %s", e.Field, e.Reason)
}

// NewInvalidInput builds an InvalidInputError for a decimal field
func NewInvalidInput(field string, value decimal.Decimal, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Value: value.String(), Reason: reason}
}

// UnresolvedExcessError is returned when the 415(c) waterfall runs out of
// buckets before the excess is gone
type UnresolvedExcessError struct {
	Residual decimal.Decimal
	// Steps applied before the buckets ran dry
	Steps []CorrectionStep
}

func (e *UnresolvedExcessError) Error() string {
	return fmt.Sprintf("415(c) excess not resolved: $%s remains after all buckets", e.Residual.StringFixed(2))
}

// ConfigurationMissingError is returned when a required limit has neither a
// configured value nor a statutory default
type ConfigurationMissingError struct {
	Key string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("configuration missing: no value or default for %q", e.Key)
}

// LevelingError signals that the top-down leveling loop hit its iteration cap
type LevelingError struct {
	Iterations int
	Remaining  decimal.Decimal
}

func (e *LevelingError) Error() string {
	return fmt.Sprintf("leveling did not converge after %d iterations (remaining excess %s)", e.Iterations, e.Remaining.String())
}
