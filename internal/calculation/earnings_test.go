package calculation

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocableEarnings(t *testing.T) {
	tests := []struct {
		name          string
		excess        string
		start         string
		contributions string
		end           string
		earnings      string
		net           string
	}{
		{"gain", "1000", "50000", "20000", "77000", "100", "7000"},
		{"loss", "1000", "50000", "20000", "63000", "-100", "-7000"},
		{"new account", "1000", "0", "20000", "22000", "100", "2000"},
		{"flat year", "2500", "10000", "5000", "15000", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			earnings, net, err := AllocableEarnings(d(tt.excess), d(tt.start), d(tt.contributions), d(tt.end))
			require.NoError(t, err)
			assertNear(t, d(tt.earnings), earnings, "1e-9", "earnings")
			assertNear(t, d(tt.net), net, "0", "net")
		})
	}
}

func TestAllocableEarnings_InvalidInput(t *testing.T) {
	tests := []struct {
		name                             string
		excess, start, contribution, end string
		field                            string
	}{
		{"zero excess", "0", "100", "100", "300", "excess"},
		{"excess above contributions", "5000", "100000", "4000", "110000", "excess"},
		{"negative start", "100", "-1", "1000", "2000", "startBalance"},
		{"negative contributions", "100", "0", "-1000", "2000", "contributions"},
		{"negative end", "100", "0", "1000", "-2000", "endBalance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := AllocableEarnings(d(tt.excess), d(tt.start), d(tt.contribution), d(tt.end))
			var invalid *domain.InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}
