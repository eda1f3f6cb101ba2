package config

import (
	"sort"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is an immutable copy of the limits and rules for one run.
// Engines receive it explicitly and never go back to the Provider.
type Snapshot struct {
	limits     map[string]decimal.Decimal
	defaulted  map[string]bool
	planName   string
	safeHarbor bool
}

// Capture resolves RequiredLimitKeys and every known default from p
func Capture(p Provider) (*Snapshot, error) {
	return CaptureKeys(p, RequiredLimitKeys)
}

// CaptureKeys resolves the given required keys from p. A key resolves to the
// provider's value when present and positive, otherwise to DefaultLimits.
// A required key with neither returns ConfigurationMissingError.
func CaptureKeys(p Provider, required []string) (*Snapshot, error) {
	s := &Snapshot{
		limits:    make(map[string]decimal.Decimal, len(DefaultLimits)+len(required)),
		defaulted: make(map[string]bool),
		planName:  DefaultPlanName,
	}

	resolve := func(key string) bool {
		if p != nil {
			if v, ok := p.Limit(key); ok && v.IsPositive() {
				s.limits[key] = v
				return true
			}
		}
		if v, ok := DefaultLimits[key]; ok {
			s.limits[key] = v
			s.defaulted[key] = true
			return true
		}
		return false
	}

	for _, key := range required {
		if !resolve(key) {
			return nil, &domain.ConfigurationMissingError{Key: key}
		}
	}
	for key := range DefaultLimits {
		if _, done := s.limits[key]; !done {
			resolve(key)
		}
	}

	if p != nil {
		if v, ok := p.Rule(RuleSafeHarbor); ok {
			if b, isBool := v.(bool); isBool {
				s.safeHarbor = b
			}
		}
		if v, ok := p.Rule(RulePlanName); ok {
			if name, isString := v.(string); isString && name != "" {
				s.planName = name
			}
		}
	}

	return s, nil
}

// Limit returns the captured value for key
func (s *Snapshot) Limit(key string) (decimal.Decimal, error) {
	v, ok := s.limits[key]
	if !ok {
		return decimal.Zero, &domain.ConfigurationMissingError{Key: key}
	}
	return v, nil
}

// CompMax is the 401(a)(17) compensation limit
func (s *Snapshot) CompMax() decimal.Decimal { return s.limits[KeyCompMax] }

// Deferral402g is the elective deferral limit
func (s *Snapshot) Deferral402g() decimal.Decimal { return s.limits[KeyDeferral402g] }

// CatchUp is the age 50+ catch-up limit
func (s *Snapshot) CatchUp() decimal.Decimal { return s.limits[KeyCatchUp] }

// Section415c is the annual additions dollar limit
func (s *Snapshot) Section415c() decimal.Decimal { return s.limits[KeySection415c] }

// HCECompTest is the HCE compensation threshold
func (s *Snapshot) HCECompTest() decimal.Decimal { return s.limits[KeyHCECompTest] }

// SafeHarbor reports whether the plan is a safe harbor plan
func (s *Snapshot) SafeHarbor() bool { return s.safeHarbor }

// PlanName returns the configured plan name
func (s *Snapshot) PlanName() string { return s.planName }

// Limits returns a copy of every captured limit
func (s *Snapshot) Limits() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.limits))
	for k, v := range s.limits {
		out[k] = v
	}
	return out
}

// Defaulted lists the keys that fell back to DefaultLimits, sorted
func (s *Snapshot) Defaulted() []string {
	keys := make([]string, 0, len(s.defaulted))
	for k := range s.defaulted {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keys lists every captured key, sorted
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.limits))
	for k := range s.limits {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
