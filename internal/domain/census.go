package domain

import (
	"github.com/shopspring/decimal"
)

// Employee is one census row for a plan year
type Employee struct {
	ID                    string          `yaml:"id" json:"id"`
	Name                  string          `yaml:"name,omitempty" json:"name,omitempty"`
	Compensation          decimal.Decimal `yaml:"compensation" json:"compensation"`
	PriorYearCompensation decimal.Decimal `yaml:"prior_year_compensation,omitempty" json:"prior_year_compensation,omitempty"`
	Age                   int             `yaml:"age,omitempty" json:"age,omitempty"`
	Owner                 bool            `yaml:"owner,omitempty" json:"owner,omitempty"` // 5% owner

	ElectiveDeferral decimal.Decimal `yaml:"elective_deferral" json:"elective_deferral"`
	EmployerMatch    decimal.Decimal `yaml:"employer_match" json:"employer_match"`
	AfterTax         decimal.Decimal `yaml:"after_tax,omitempty" json:"after_tax,omitempty"`
	ProfitSharing    decimal.Decimal `yaml:"profit_sharing,omitempty" json:"profit_sharing,omitempty"`
	Forfeitures      decimal.Decimal `yaml:"forfeitures,omitempty" json:"forfeitures,omitempty"`

	// Account activity for the plan year, used to compute earnings on refunds
	Account *AccountActivity `yaml:"account,omitempty" json:"account,omitempty"`
}

// AccountActivity is the balance history needed for the fractional earnings method
type AccountActivity struct {
	BeginningBalance decimal.Decimal `yaml:"beginning_balance" json:"beginning_balance"`
	Contributions    decimal.Decimal `yaml:"contributions" json:"contributions"`
	EndingBalance    decimal.Decimal `yaml:"ending_balance" json:"ending_balance"`
}

// CatchUpEligible reports whether the employee is 50 or older in the plan year
func (e Employee) CatchUpEligible() bool {
	return e.Age >= 50
}

// LookbackCompensation is the compensation used for the HCE threshold test
func (e Employee) LookbackCompensation() decimal.Decimal {
	if e.PriorYearCompensation.IsPositive() {
		return e.PriorYearCompensation
	}
	return e.Compensation
}

// Census is the plan-year input for a full plan run
type Census struct {
	PlanYear int `yaml:"plan_year" json:"plan_year"`

	// Optional NHCE averages, used instead of computing them from NHCE rows
	NHCEAverageADP *decimal.Decimal `yaml:"nhce_average_adp,omitempty" json:"nhce_average_adp,omitempty"`
	NHCEAverageACP *decimal.Decimal `yaml:"nhce_average_acp,omitempty" json:"nhce_average_acp,omitempty"`

	Employees []Employee `yaml:"employees" json:"employees"`
}
