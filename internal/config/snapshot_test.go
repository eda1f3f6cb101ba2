package config

import (
	"errors"
	"testing"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture_DefaultsFillGaps(t *testing.T) {
	provider := StaticProvider{
		Limits: map[string]decimal.Decimal{
			KeySection415c: decimal.NewFromInt(70000),
			KeyCompMax:     decimal.Zero, // zero means unset
		},
	}

	snapshot, err := Capture(provider)
	require.NoError(t, err)

	assert.True(t, snapshot.Section415c().Equal(decimal.NewFromInt(70000)))
	assert.True(t, snapshot.CompMax().Equal(DefaultLimits[KeyCompMax]))
	assert.True(t, snapshot.Deferral402g().Equal(decimal.NewFromInt(23000)))
	assert.True(t, snapshot.CatchUp().Equal(decimal.NewFromInt(7500)))
	assert.True(t, snapshot.HCECompTest().Equal(decimal.NewFromInt(155000)))

	assert.NotContains(t, snapshot.Defaulted(), KeySection415c)
	assert.Contains(t, snapshot.Defaulted(), KeyCompMax)
	assert.Len(t, snapshot.Keys(), len(DefaultLimits))
}

func TestDefaultLimits_OnlyRequiredKeys(t *testing.T) {
	keys := make([]string, 0, len(DefaultLimits))
	for k := range DefaultLimits {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, RequiredLimitKeys, keys)

	snapshot, err := Capture(nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, RequiredLimitKeys, snapshot.Keys())
}

func TestCapture_NilProvider(t *testing.T) {
	snapshot, err := Capture(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPlanName, snapshot.PlanName())
	assert.False(t, snapshot.SafeHarbor())
	assert.Len(t, snapshot.Defaulted(), len(DefaultLimits))
}

func TestCaptureKeys_MissingRequiredKey(t *testing.T) {
	_, err := CaptureKeys(StaticProvider{}, []string{KeyCompMax, "top_heavy_minimum"})

	var missing *domain.ConfigurationMissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "top_heavy_minimum", missing.Key)
}

func TestCaptureKeys_ProviderSuppliesExtraKey(t *testing.T) {
	provider := StaticProvider{Limits: map[string]decimal.Decimal{"top_heavy_minimum": decimal.NewFromFloat(0.03)}}

	snapshot, err := CaptureKeys(provider, []string{"top_heavy_minimum"})
	require.NoError(t, err)

	v, err := snapshot.Limit("top_heavy_minimum")
	require.NoError(t, err)
	assert.True(t, v.Equal(decimal.NewFromFloat(0.03)))

	_, err = snapshot.Limit("unknown")
	var missing *domain.ConfigurationMissingError
	assert.True(t, errors.As(err, &missing))
}

func TestSnapshot_IsolatedFromProvider(t *testing.T) {
	limits := map[string]decimal.Decimal{KeySection415c: decimal.NewFromInt(70000)}
	provider := StaticProvider{Limits: limits}

	snapshot, err := Capture(provider)
	require.NoError(t, err)

	limits[KeySection415c] = decimal.NewFromInt(1)
	assert.True(t, snapshot.Section415c().Equal(decimal.NewFromInt(70000)), "later provider changes must not leak in")

	copied := snapshot.Limits()
	copied[KeySection415c] = decimal.NewFromInt(2)
	assert.True(t, snapshot.Section415c().Equal(decimal.NewFromInt(70000)), "Limits returns a copy")
}

func TestSnapshot_Rules(t *testing.T) {
	tests := []struct {
		name       string
		rules      map[string]any
		safeHarbor bool
		planName   string
	}{
		{"defaults", nil, false, DefaultPlanName},
		{"safe harbor", map[string]any{RuleSafeHarbor: true, RulePlanName: "Acme"}, true, "Acme"},
		{"wrong types ignored", map[string]any{RuleSafeHarbor: "yes", RulePlanName: 42}, false, DefaultPlanName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot, err := Capture(StaticProvider{Rules: tt.rules})
			require.NoError(t, err)
			assert.Equal(t, tt.safeHarbor, snapshot.SafeHarbor())
			assert.Equal(t, tt.planName, snapshot.PlanName())
		})
	}
}

func TestOverlay(t *testing.T) {
	base := StaticProvider{
		Limits: map[string]decimal.Decimal{
			KeySection415c: decimal.NewFromInt(69000),
			KeyCompMax:     decimal.NewFromInt(345000),
		},
		Rules: map[string]any{RulePlanName: "Base Plan"},
	}
	top := StaticProvider{
		Limits: map[string]decimal.Decimal{
			KeySection415c: decimal.NewFromInt(70000),
			KeyCompMax:     decimal.Zero,
		},
	}

	p := Overlay(top, base)

	v, ok := p.Limit(KeySection415c)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(70000)))

	v, ok = p.Limit(KeyCompMax)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(345000)), "non-positive top value falls through")

	name, ok := p.Rule(RulePlanName)
	assert.True(t, ok)
	assert.Equal(t, "Base Plan", name)

	_, ok = Overlay(nil, nil).Limit(KeyCompMax)
	assert.False(t, ok)
}

func TestPlanRules_Provider(t *testing.T) {
	safeHarbor := true
	rules := &PlanRules{
		Limits: map[string]decimal.Decimal{KeyCatchUp: decimal.NewFromInt(7500)},
		Plan: PlanSettings{
			PlanName:     "Acme",
			SafeHarbor:   &safeHarbor,
			MatchFormula: "100% of 4%",
		},
	}

	v, ok := rules.Limit(KeyCatchUp)
	assert.True(t, ok)
	assert.True(t, v.Equal(decimal.NewFromInt(7500)))

	sh, ok := rules.Rule(RuleSafeHarbor)
	assert.True(t, ok)
	assert.Equal(t, true, sh)

	formula, ok := rules.Rule(RuleMatchFormula)
	assert.True(t, ok)
	assert.Equal(t, "100% of 4%", formula)

	_, ok = rules.Rule(RuleVestingSchedule)
	assert.False(t, ok)

	var empty *PlanRules
	_, ok = empty.Limit(KeyCatchUp)
	assert.False(t, ok)
}
