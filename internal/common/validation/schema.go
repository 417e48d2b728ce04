package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ApplicationSchema is the JSON schema an assembled application payload must satisfy.
const ApplicationSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["personalInfo", "familyFinancial", "situationDescriptions", "submittedAt"],
  "properties": {
    "personalInfo": {
      "type": "object",
      "required": ["name", "nationalId", "dateOfBirth", "gender", "address", "city", "state", "country", "phone", "email"],
      "properties": {
        "name":        {"type": "string", "minLength": 1},
        "nationalId":  {"type": "string", "minLength": 1},
        "dateOfBirth": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
        "gender":      {"enum": ["male", "female", "other"]},
        "address":     {"type": "string", "minLength": 1},
        "city":        {"type": "string", "minLength": 1},
        "state":       {"type": "string", "minLength": 1},
        "country":     {"type": "string", "minLength": 1},
        "phone":       {"type": "string", "minLength": 10},
        "email":       {"type": "string", "minLength": 3}
      }
    },
    "familyFinancial": {
      "type": "object",
      "required": ["maritalStatus", "dependents", "employmentStatus", "monthlyIncome", "housingStatus"],
      "properties": {
        "maritalStatus":    {"enum": ["single", "married", "divorced", "widowed"]},
        "dependents":       {"type": "integer", "minimum": 0},
        "employmentStatus": {"enum": ["employed", "unemployed", "selfEmployed", "retired", "student"]},
        "monthlyIncome":    {"type": "number", "minimum": 0},
        "housingStatus":    {"enum": ["owned", "rented", "livingWithFamily", "homeless"]}
      }
    },
    "situationDescriptions": {
      "type": "object",
      "required": ["currentFinancialSituation", "employmentCircumstances", "reasonForApplying"],
      "properties": {
        "currentFinancialSituation": {"type": "string", "minLength": 1},
        "employmentCircumstances":   {"type": "string", "minLength": 1},
        "reasonForApplying":         {"type": "string", "minLength": 1}
      }
    },
    "submittedAt": {"type": "string", "minLength": 1}
  }
}`

// Schema is a compiled JSON schema.
type Schema struct {
	schema *gojsonschema.Schema
}

// CompileSchema compiles a JSON schema document.
func CompileSchema(schemaJSON string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// ValidateDocument validates any JSON-encodable value against the schema.
func (s *Schema) ValidateDocument(doc interface{}) (*ValidationResult, error) {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	errors := []ValidationError{}
	for _, e := range result.Errors() {
		errors = append(errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    CodeSchemaViolation,
		})
	}
	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errors,
	}, nil
}
