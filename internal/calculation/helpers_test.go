package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// assertNear fails unless got is within tol of want
func assertNear(t *testing.T, want, got decimal.Decimal, tol string, msg string) {
	t.Helper()
	assert.Truef(t, got.Sub(want).Abs().LessThanOrEqual(d(tol)),
		"%s: want %s, got %s", msg, want.String(), got.String())
}

// TestLogger records formatted messages by level
type TestLogger struct {
	messages []string
}

func (tl *TestLogger) Debugf(format string, args ...any) {
	tl.messages = append(tl.messages, "DEBUG: "+format)
}

func (tl *TestLogger) Infof(format string, args ...any) {
	tl.messages = append(tl.messages, "INFO: "+format)
}

func (tl *TestLogger) Warnf(format string, args ...any) {
	tl.messages = append(tl.messages, "WARN: "+format)
}

func (tl *TestLogger) Errorf(format string, args ...any) {
	tl.messages = append(tl.messages, "ERROR: "+format)
}
