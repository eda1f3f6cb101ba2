package config

import (
	"fmt"
	"os"

	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of plan rules and census files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadPlanRules loads a plan rules file. Limits the file leaves out are
// filled from DefaultLimits when the snapshot is captured.
func (ip *InputParser) LoadPlanRules(filename string) (*PlanRules, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var rules PlanRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidatePlanRules(&rules); err != nil {
		return nil, fmt.Errorf("plan rules validation failed: %w", err)
	}

	return &rules, nil
}

// ValidatePlanRules rejects negative limits; zero or missing limits fall back to defaults
func (ip *InputParser) ValidatePlanRules(rules *PlanRules) error {
	for key, value := range rules.Limits {
		if value.IsNegative() {
			return domain.NewInvalidInput("limits."+key, value, "limit cannot be negative")
		}
	}
	return nil
}

// LoadCensus loads and validates a census file
func (ip *InputParser) LoadCensus(filename string) (*domain.Census, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var census domain.Census
	if err := yaml.Unmarshal(data, &census); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateCensus(&census); err != nil {
		return nil, fmt.Errorf("census validation failed: %w", err)
	}

	return &census, nil
}

// ValidateCensus validates a loaded census
func (ip *InputParser) ValidateCensus(census *domain.Census) error {
	if len(census.Employees) == 0 {
		return &domain.InvalidInputError{Field: "employees", Reason: "at least one employee is required"}
	}

	if census.NHCEAverageADP != nil && census.NHCEAverageADP.IsNegative() {
		return domain.NewInvalidInput("nhce_average_adp", *census.NHCEAverageADP, "cannot be negative")
	}
	if census.NHCEAverageACP != nil && census.NHCEAverageACP.IsNegative() {
		return domain.NewInvalidInput("nhce_average_acp", *census.NHCEAverageACP, "cannot be negative")
	}

	seen := make(map[string]bool, len(census.Employees))
	for i, employee := range census.Employees {
		if err := ip.validateEmployee(&employee); err != nil {
			return fmt.Errorf("employee %d (%s) validation failed: %w", i, employee.ID, err)
		}
		if seen[employee.ID] {
			return fmt.Errorf("employee %d validation failed: %w", i,
				&domain.InvalidInputError{Field: "id", Value: employee.ID, Reason: "duplicate employee id"})
		}
		seen[employee.ID] = true
	}

	return nil
}

// validateEmployee validates a single census row
func (ip *InputParser) validateEmployee(employee *domain.Employee) error {
	if employee.ID == "" {
		return &domain.InvalidInputError{Field: "id", Reason: "id is required"}
	}
	if !employee.Compensation.IsPositive() {
		return domain.NewInvalidInput("compensation", employee.Compensation, "compensation must be positive")
	}
	if employee.PriorYearCompensation.IsNegative() {
		return domain.NewInvalidInput("prior_year_compensation", employee.PriorYearCompensation, "cannot be negative")
	}
	if employee.Age < 0 || employee.Age > 120 {
		return &domain.InvalidInputError{Field: "age", Value: fmt.Sprintf("%d", employee.Age), Reason: "age must be between 0 and 120"}
	}

	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"elective_deferral", employee.ElectiveDeferral},
		{"employer_match", employee.EmployerMatch},
		{"after_tax", employee.AfterTax},
		{"profit_sharing", employee.ProfitSharing},
		{"forfeitures", employee.Forfeitures},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return domain.NewInvalidInput(a.field, a.value, "contribution cannot be negative")
		}
	}

	if employee.Account != nil {
		if employee.Account.BeginningBalance.IsNegative() ||
			employee.Account.Contributions.IsNegative() ||
			employee.Account.EndingBalance.IsNegative() {
			return &domain.InvalidInputError{Field: "account", Reason: "balances and contributions cannot be negative"}
		}
	}

	return nil
}

// LevelingInput is a standalone ADP/ACP leveling test file
type LevelingInput struct {
	Kind            domain.TestKind             `yaml:"kind"`
	NHCEAverageRate decimal.Decimal             `yaml:"nhce_average_rate"`
	Records         []domain.ContributionRecord `yaml:"records"`
}

// LoadLevelingInput loads a leveling test file. Kind defaults to ADP.
func (ip *InputParser) LoadLevelingInput(filename string) (*LevelingInput, error) {
	var input LevelingInput
	if err := readYAML(filename, &input); err != nil {
		return nil, err
	}
	if input.Kind == "" {
		input.Kind = domain.TestADP
	}
	if input.Kind != domain.TestADP && input.Kind != domain.TestACP {
		return nil, &domain.InvalidInputError{Field: "kind", Value: string(input.Kind), Reason: "must be ADP or ACP"}
	}
	if len(input.Records) == 0 {
		return nil, &domain.InvalidInputError{Field: "records", Reason: "at least one record is required"}
	}
	return &input, nil
}

// LoadAnnualAdditionsCase loads one participant's 415(c) case. A missing
// statutory limit is left at zero for the caller to fill from a Snapshot.
func (ip *InputParser) LoadAnnualAdditionsCase(filename string) (*domain.AnnualAdditionsCase, error) {
	var c domain.AnnualAdditionsCase
	if err := readYAML(filename, &c); err != nil {
		return nil, err
	}
	if c.ParticipantID == "" {
		return nil, &domain.InvalidInputError{Field: "participant_id", Reason: "participant_id is required"}
	}
	return &c, nil
}

func readYAML(filename string, v any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}
