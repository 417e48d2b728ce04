// internal/models/form.go
package models

import "strings"

const (
	MinStep = 1
	MaxStep = 3
)

// Step 1: personal information.
const (
	FieldName        = "name"
	FieldNationalID  = "nationalId"
	FieldDateOfBirth = "dateOfBirth"
	FieldGender      = "gender"
	FieldAddress     = "address"
	FieldCity        = "city"
	FieldState       = "state"
	FieldCountry     = "country"
	FieldPhone       = "phone"
	FieldEmail       = "email"
)

// Step 2: family and financial details.
const (
	FieldMaritalStatus    = "maritalStatus"
	FieldDependents       = "dependents"
	FieldEmploymentStatus = "employmentStatus"
	FieldMonthlyIncome    = "monthlyIncome"
	FieldHousingStatus    = "housingStatus"
)

// Step 3: situation descriptions.
const (
	FieldCurrentFinancialSituation = "currentFinancialSituation"
	FieldEmploymentCircumstances   = "employmentCircumstances"
	FieldReasonForApplying         = "reasonForApplying"
)

var (
	Step1Fields = []string{
		FieldName, FieldNationalID, FieldDateOfBirth, FieldGender, FieldAddress,
		FieldCity, FieldState, FieldCountry, FieldPhone, FieldEmail,
	}
	Step2Fields = []string{
		FieldMaritalStatus, FieldDependents, FieldEmploymentStatus, FieldMonthlyIncome, FieldHousingStatus,
	}
	Step3Fields = []string{
		FieldCurrentFinancialSituation, FieldEmploymentCircumstances, FieldReasonForApplying,
	}
)

var (
	Genders            = []string{"male", "female", "other"}
	MaritalStatuses    = []string{"single", "married", "divorced", "widowed"}
	EmploymentStatuses = []string{"employed", "unemployed", "selfEmployed", "retired", "student"}
	HousingStatuses    = []string{"owned", "rented", "livingWithFamily", "homeless"}
)

// Enumerations maps each enumerated field to its allowed values.
var Enumerations = map[string][]string{
	FieldGender:           Genders,
	FieldMaritalStatus:    MaritalStatuses,
	FieldEmploymentStatus: EmploymentStatuses,
	FieldHousingStatus:    HousingStatuses,
}

// FieldsForStep returns the schema field names of step n, nil outside [1,3].
func FieldsForStep(n int) []string {
	switch n {
	case 1:
		return Step1Fields
	case 2:
		return Step2Fields
	case 3:
		return Step3Fields
	}
	return nil
}

// StepOfField returns the step owning name, or 0 for fields outside the schema.
func StepOfField(name string) int {
	for step := MinStep; step <= MaxStep; step++ {
		for _, f := range FieldsForStep(step) {
			if f == name {
				return step
			}
		}
	}
	return 0
}

// IsMultiline reports the free-text fields edited as text areas.
func IsMultiline(name string) bool {
	return StepOfField(name) == 3
}

// ClampStep forces n into [MinStep, MaxStep].
func ClampStep(n int) int {
	if n < MinStep {
		return MinStep
	}
	if n > MaxStep {
		return MaxStep
	}
	return n
}

// StepData is one step group. Keys outside the schema are kept as-is.
type StepData map[string]string

func NewStepData(fields []string) StepData {
	d := make(StepData, len(fields))
	for _, f := range fields {
		d[f] = ""
	}
	return d
}

func (d StepData) Clone() StepData {
	out := make(StepData, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge returns a copy of d with every key of partial overwritten.
func (d StepData) Merge(partial StepData) StepData {
	out := d.Clone()
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// Diff returns the entries of other whose value differs from d.
func (d StepData) Diff(other StepData) StepData {
	changed := StepData{}
	for k, v := range other {
		if cur, ok := d[k]; !ok || cur != v {
			changed[k] = v
		}
	}
	return changed
}

func (d StepData) Equal(other StepData) bool {
	if len(d) != len(other) {
		return false
	}
	for k, v := range d {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Trimmed returns the value of key without surrounding whitespace.
func (d StepData) Trimmed(key string) string {
	return strings.TrimSpace(d[key])
}

// FormState is the root aggregate of the wizard.
type FormState struct {
	Step1       StepData `json:"step1"`
	Step2       StepData `json:"step2"`
	Step3       StepData `json:"step3"`
	CurrentStep int      `json:"currentStep"`
}

// InitialFormState returns every schema field empty and the first step active.
func InitialFormState() FormState {
	return FormState{
		Step1:       NewStepData(Step1Fields),
		Step2:       NewStepData(Step2Fields),
		Step3:       NewStepData(Step3Fields),
		CurrentStep: MinStep,
	}
}

func (s FormState) Clone() FormState {
	return FormState{
		Step1:       s.Step1.Clone(),
		Step2:       s.Step2.Clone(),
		Step3:       s.Step3.Clone(),
		CurrentStep: s.CurrentStep,
	}
}

// Group returns step n's data, nil outside [1,3].
func (s FormState) Group(n int) StepData {
	switch n {
	case 1:
		return s.Step1
	case 2:
		return s.Step2
	case 3:
		return s.Step3
	}
	return nil
}

// WithGroup returns a copy of s whose step n group is replaced by d.
func (s FormState) WithGroup(n int, d StepData) FormState {
	out := s.Clone()
	switch n {
	case 1:
		out.Step1 = d
	case 2:
		out.Step2 = d
	case 3:
		out.Step3 = d
	}
	return out
}

// Normalize fills nil groups and clamps the step, e.g. after decoding a stored draft.
func (s FormState) Normalize() FormState {
	fresh := InitialFormState()
	out := s.Clone()
	if s.Step1 == nil {
		out.Step1 = fresh.Step1
	}
	if s.Step2 == nil {
		out.Step2 = fresh.Step2
	}
	if s.Step3 == nil {
		out.Step3 = fresh.Step3
	}
	out.CurrentStep = ClampStep(s.CurrentStep)
	return out
}

func (s FormState) Equal(other FormState) bool {
	return s.CurrentStep == other.CurrentStep &&
		s.Step1.Equal(other.Step1) &&
		s.Step2.Equal(other.Step2) &&
		s.Step3.Equal(other.Step3)
}
