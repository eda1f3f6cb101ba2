package calculation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessRisk(t *testing.T) {
	tests := []struct {
		name     string
		nhce     string
		hce      string
		max      string
		headroom string
		passing  bool
	}{
		{"over the plus two limit", "0.03", "0.055", "0.05", "-0.005", false},
		{"room under 1.25x", "0.10", "0.12", "0.125", "0.005", true},
		{"exactly at limit", "0.01", "0.02", "0.02", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk, err := AssessRisk(d(tt.nhce), d(tt.hce))
			require.NoError(t, err)
			assertNear(t, d(tt.max), risk.MaxAllowedHCERate, "0", "max allowed")
			assertNear(t, d(tt.headroom), risk.Headroom, "0", "headroom")
			assert.Equal(t, tt.passing, risk.Passing)
		})
	}
}

func TestAssessRisk_Negative(t *testing.T) {
	_, err := AssessRisk(d("-0.01"), d("0.05"))
	assert.Error(t, err)

	_, err = AssessRisk(d("0.03"), d("-0.05"))
	assert.Error(t, err)
}
