package calculation

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelDown(t *testing.T) {
	tests := []struct {
		name       string
		values     []string
		excess     string
		want       []string
		iterations int
	}{
		{
			name:       "staircase through next highest",
			values:     []string{"0.08", "0.06", "0.04"},
			excess:     "0.03",
			want:       []string{"0.025", "0.005", "0"},
			iterations: 2,
		},
		{
			name:       "single step inside first gap",
			values:     []string{"0.08", "0.06", "0.04"},
			excess:     "0.01",
			want:       []string{"0.01", "0", "0"},
			iterations: 1,
		},
		{
			name:       "tied top group lowered together",
			values:     []string{"0.08", "0.02", "0.08"},
			excess:     "0.02",
			want:       []string{"0.01", "0", "0.01"},
			iterations: 1,
		},
		{
			name:       "everything to zero",
			values:     []string{"300", "100"},
			excess:     "400",
			want:       []string{"300", "100"},
			iterations: 2,
		},
		{
			name:       "no excess",
			values:     []string{"0.05", "0.04"},
			excess:     "0",
			want:       []string{"0", "0"},
			iterations: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := make([]decimal.Decimal, len(tt.values))
			for i, v := range tt.values {
				values[i] = d(v)
			}

			got, iterations, err := levelDown(values, d(tt.excess), len(values)+1, rateEpsilon)
			require.NoError(t, err)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assertNear(t, d(w), got[i], "1e-12", tt.name)
			}
			assert.Equal(t, tt.iterations, iterations)
		})
	}
}

func TestLevelDown_DoesNotAliasInput(t *testing.T) {
	values := []decimal.Decimal{d("0.08"), d("0.06"), d("0.04")}
	before := make([]decimal.Decimal, len(values))
	copy(before, values)

	_, _, err := levelDown(values, d("0.03"), 4, rateEpsilon)
	require.NoError(t, err)

	for i := range values {
		assert.True(t, before[i].Equal(values[i]), "input %d was modified", i)
	}
}

func TestLevelDown_IterationCap(t *testing.T) {
	values := []decimal.Decimal{d("0.08"), d("0.06"), d("0.04")}

	_, iterations, err := levelDown(values, d("0.03"), 1, rateEpsilon)

	var levelErr *domain.LevelingError
	require.True(t, errors.As(err, &levelErr))
	assert.Equal(t, 1, iterations)
	assert.Equal(t, 1, levelErr.Iterations)
	assertNear(t, d("0.01"), levelErr.Remaining, "1e-12", "remaining")
}

func TestLevelDown_ExcessBeyondTotal(t *testing.T) {
	values := []decimal.Decimal{d("2"), d("1")}

	_, _, err := levelDown(values, d("10"), 10, dollarEpsilon)

	var levelErr *domain.LevelingError
	assert.True(t, errors.As(err, &levelErr))
}

func TestReduceToTarget(t *testing.T) {
	got := reduceToTarget([]decimal.Decimal{d("0.08"), d("0.06"), d("0.04")}, d("0.05"))

	assertNear(t, d("0.03"), got[0], "0", "first")
	assertNear(t, d("0.01"), got[1], "0", "second")
	assert.True(t, got[2].IsZero())
}
