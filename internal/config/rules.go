package config

import (
	"github.com/shopspring/decimal"
)

// Limit keys shared by every calculator in the plan toolkit
const (
	KeyCompMax      = "comp_max"      // 401(a)(17) compensation limit
	KeyDeferral402g = "deferral_402g" // 402(g) elective deferral limit
	KeyCatchUp      = "catchup"       // age 50+ catch-up limit
	KeySection415c  = "section_415c"  // 415(c) annual additions dollar limit
	KeyHCECompTest  = "hce_comp_test" // HCE compensation threshold
)

// Rule keys
const (
	RuleSafeHarbor      = "safe_harbor"
	RulePlanName        = "plan_name"
	RuleMatchFormula    = "match_formula"
	RuleVestingSchedule = "vesting_schedule"
	RuleCompDefinition  = "comp_definition"
)

// RequiredLimitKeys must resolve (configured or defaulted) before any engine runs
var RequiredLimitKeys = []string{
	KeyDeferral402g,
	KeyCatchUp,
	KeyCompMax,
	KeySection415c,
	KeyHCECompTest,
}

// DefaultLimits are the 2024 IRS figures used when a limit is not configured
var DefaultLimits = map[string]decimal.Decimal{
	KeyCompMax:      decimal.NewFromInt(345000),
	KeyDeferral402g: decimal.NewFromInt(23000),
	KeyCatchUp:      decimal.NewFromInt(7500),
	KeySection415c:  decimal.NewFromInt(69000),
	KeyHCECompTest:  decimal.NewFromInt(155000),
}

// DefaultPlanName is shown when the rules file does not name the plan
const DefaultPlanName = "401(k) Plan"

// Provider supplies statutory limits and plan rules
type Provider interface {
	Limit(key string) (decimal.Decimal, bool)
	Rule(key string) (any, bool)
}

// PlanSettings holds the plan-document options
type PlanSettings struct {
	PlanName        string `yaml:"plan_name" json:"plan_name"`
	SafeHarbor      *bool  `yaml:"safe_harbor,omitempty" json:"safe_harbor,omitempty"`
	MatchFormula    string `yaml:"match_formula,omitempty" json:"match_formula,omitempty"`
	VestingSchedule string `yaml:"vesting_schedule,omitempty" json:"vesting_schedule,omitempty"`
	CompDefinition  string `yaml:"comp_definition,omitempty" json:"comp_definition,omitempty"`
}

// PlanRules is the plan rules file: IRS limits plus plan settings
type PlanRules struct {
	Limits map[string]decimal.Decimal `yaml:"limits" json:"limits"`
	Plan   PlanSettings               `yaml:"plan" json:"plan"`
}

// Limit implements Provider
func (pr *PlanRules) Limit(key string) (decimal.Decimal, bool) {
	if pr == nil || pr.Limits == nil {
		return decimal.Zero, false
	}
	v, ok := pr.Limits[key]
	return v, ok
}

// Rule implements Provider
func (pr *PlanRules) Rule(key string) (any, bool) {
	if pr == nil {
		return nil, false
	}
	switch key {
	case RuleSafeHarbor:
		if pr.Plan.SafeHarbor == nil {
			return nil, false
		}
		return *pr.Plan.SafeHarbor, true
	case RulePlanName:
		return pr.Plan.PlanName, pr.Plan.PlanName != ""
	case RuleMatchFormula:
		return pr.Plan.MatchFormula, pr.Plan.MatchFormula != ""
	case RuleVestingSchedule:
		return pr.Plan.VestingSchedule, pr.Plan.VestingSchedule != ""
	case RuleCompDefinition:
		return pr.Plan.CompDefinition, pr.Plan.CompDefinition != ""
	}
	return nil, false
}

// StaticProvider is a map-backed Provider
type StaticProvider struct {
	Limits map[string]decimal.Decimal
	Rules  map[string]any
}

// Limit implements Provider
func (sp StaticProvider) Limit(key string) (decimal.Decimal, bool) {
	v, ok := sp.Limits[key]
	return v, ok
}

// Rule implements Provider
func (sp StaticProvider) Rule(key string) (any, bool) {
	v, ok := sp.Rules[key]
	return v, ok
}

// Overlay returns a Provider that reads limits from top first, then base
func Overlay(top, base Provider) Provider {
	return overlay{top: top, base: base}
}

type overlay struct {
	top, base Provider
}

func (o overlay) Limit(key string) (decimal.Decimal, bool) {
	if o.top != nil {
		if v, ok := o.top.Limit(key); ok && v.IsPositive() {
			return v, true
		}
	}
	if o.base == nil {
		return decimal.Zero, false
	}
	return o.base.Limit(key)
}

func (o overlay) Rule(key string) (any, bool) {
	if o.top != nil {
		if v, ok := o.top.Rule(key); ok {
			return v, true
		}
	}
	if o.base == nil {
		return nil, false
	}
	return o.base.Rule(key)
}
