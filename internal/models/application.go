// internal/models/application.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FamilyFinancial is step 2 with its numeric fields converted.
type FamilyFinancial struct {
	MaritalStatus    string      `json:"maritalStatus"`
	Dependents       int         `json:"dependents"`
	EmploymentStatus string      `json:"employmentStatus"`
	MonthlyIncome    json.Number `json:"monthlyIncome"`
	HousingStatus    string      `json:"housingStatus"`
}

// ApplicationPayload is what a Submitter receives.
type ApplicationPayload struct {
	PersonalInfo          StepData        `json:"personalInfo"`
	FamilyFinancial       FamilyFinancial `json:"familyFinancial"`
	SituationDescriptions StepData        `json:"situationDescriptions"`
	SubmittedAt           string          `json:"submittedAt"`
}

// SubmissionResult is the confirmation returned by a successful submission.
type SubmissionResult struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	SubmittedAt   string `json:"submittedAt"`
	Message       string `json:"message"`
}

const StatusSubmitted = "submitted"

// NewApplicationPayload assembles the three step groups. dependents and monthlyIncome must parse.
func NewApplicationPayload(s FormState, now time.Time) (*ApplicationPayload, error) {
	dependents, err := ParseDependents(s.Step2[FieldDependents])
	if err != nil {
		return nil, err
	}
	income, err := ParseMonthlyIncome(s.Step2[FieldMonthlyIncome])
	if err != nil {
		return nil, err
	}

	return &ApplicationPayload{
		PersonalInfo: s.Step1.Clone(),
		FamilyFinancial: FamilyFinancial{
			MaritalStatus:    s.Step2[FieldMaritalStatus],
			Dependents:       dependents,
			EmploymentStatus: s.Step2[FieldEmploymentStatus],
			MonthlyIncome:    json.Number(income.String()),
			HousingStatus:    s.Step2[FieldHousingStatus],
		},
		SituationDescriptions: s.Step3.Clone(),
		SubmittedAt:           now.UTC().Format(time.RFC3339),
	}, nil
}

// MaxDependents bounds the dependents count so it always fits an int.
const MaxDependents = math.MaxInt32

// ParseDependents parses a non-negative whole number. Any integral decimal form the validator
// accepts ("2.0", "1e1") is accepted here as well.
func ParseDependents(raw string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("dependents %q is not a whole number", raw)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("dependents %s is negative", d.String())
	}
	if d.GreaterThan(decimal.NewFromInt(MaxDependents)) {
		return 0, fmt.Errorf("dependents %s is out of range", d.String())
	}
	return int(d.IntPart()), nil
}

// ParseMonthlyIncome parses a non-negative decimal amount.
func ParseMonthlyIncome(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("monthly income %q is not a number", raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("monthly income %s is negative", d.String())
	}
	return d, nil
}
