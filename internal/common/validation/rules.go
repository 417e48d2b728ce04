package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"social-support-wizard/internal/models"

	"github.com/shopspring/decimal"
)

const (
	CodeRequired        = "REQUIRED_FIELD_MISSING"
	CodeInvalidEmail    = "INVALID_EMAIL"
	CodeInvalidPhone    = "INVALID_PHONE"
	CodeInvalidDate     = "INVALID_DATE"
	CodeInvalidEnum     = "INVALID_ENUM_VALUE"
	CodeInvalidNumber   = "INVALID_NUMBER"
	CodeNotWholeNumber  = "NOT_WHOLE_NUMBER"
	CodeNegativeNumber  = "MINIMUM_VIOLATION"
	CodeSchemaViolation = "SCHEMA_VIOLATION"
)

// messageKeys maps error codes onto catalog keys.
var messageKeys = map[string]string{
	CodeRequired:       "validation.required",
	CodeInvalidEmail:   "validation.email",
	CodeInvalidPhone:   "validation.phone",
	CodeInvalidDate:    "validation.date",
	CodeInvalidEnum:    "validation.option",
	CodeInvalidNumber:  "validation.number",
	CodeNotWholeNumber: "validation.wholeNumber",
	CodeNegativeNumber: "validation.nonNegative",
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MessageKey is the catalog key used to localize the error.
func (e ValidationError) MessageKey() string {
	if key, ok := messageKeys[e.Code]; ok {
		return key
	}
	return "validation.required"
}

// ValidateStep checks every schema field of step n. Each field reports at most one error.
func ValidateStep(step int, data models.StepData) *ValidationResult {
	errors := []ValidationError{}
	for _, field := range models.FieldsForStep(step) {
		if err := ValidateField(field, data[field]); err != nil {
			errors = append(errors, *err)
		}
	}
	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

// ValidateField applies the required rule and the field's format rule.
func ValidateField(field, raw string) *ValidationError {
	value := strings.TrimSpace(raw)
	if value == "" {
		return &ValidationError{Field: field, Message: "required field missing", Code: CodeRequired}
	}

	switch field {
	case models.FieldEmail:
		if !ValidateEmail(value) {
			return &ValidationError{Field: field, Message: "invalid email address", Code: CodeInvalidEmail}
		}
	case models.FieldPhone:
		if !ValidatePhone(value) {
			return &ValidationError{Field: field, Message: "invalid phone number", Code: CodeInvalidPhone}
		}
	case models.FieldDateOfBirth:
		if !ValidateDate(value) {
			return &ValidationError{Field: field, Message: "date must be YYYY-MM-DD", Code: CodeInvalidDate}
		}
	case models.FieldDependents:
		return validateNumber(field, value, true)
	case models.FieldMonthlyIncome:
		return validateNumber(field, value, false)
	}

	if allowed, ok := models.Enumerations[field]; ok && !contains(allowed, value) {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be one of %v", allowed),
			Code:    CodeInvalidEnum,
		}
	}
	return nil
}

func validateNumber(field, value string, whole bool) *ValidationError {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return &ValidationError{Field: field, Message: "value must be numeric", Code: CodeInvalidNumber}
	}
	if d.IsNegative() {
		return &ValidationError{Field: field, Message: "value must be >= 0", Code: CodeNegativeNumber}
	}
	if whole && !d.IsInteger() {
		return &ValidationError{Field: field, Message: "value must be a whole number", Code: CodeNotWholeNumber}
	}
	if whole && d.GreaterThan(decimal.NewFromInt(models.MaxDependents)) {
		return &ValidationError{Field: field, Message: "value is out of range", Code: CodeInvalidNumber}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateDate accepts calendar dates written as YYYY-MM-DD.
func ValidateDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ByField indexes the errors by field name.
func (vr *ValidationResult) ByField() map[string]ValidationError {
	out := make(map[string]ValidationError, len(vr.Errors))
	for _, err := range vr.Errors {
		out[err.Field] = err
	}
	return out
}
