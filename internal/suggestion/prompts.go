// internal/suggestion/prompts.go
package suggestion

import (
	"fmt"
	"strings"

	"social-support-wizard/internal/models"
)

const SystemPrompt = "You are a helpful assistant that helps people write clear, professional, and empathetic descriptions for social support applications."

const notSpecified = "Not specified"

var fieldPrompts = map[string]string{
	models.FieldCurrentFinancialSituation: "I am applying for financial assistance. Help me describe my current financial situation in a clear and professional manner.",
	models.FieldEmploymentCircumstances:   "I am applying for financial assistance. Help me describe my employment circumstances in a clear and professional manner.",
	models.FieldReasonForApplying:         "I am applying for financial assistance. Help me write a clear and compelling reason for why I need this assistance.",
}

// BuildPrompt renders the user message for field followed by the grounding context.
func BuildPrompt(field, userContext string) string {
	base, ok := fieldPrompts[field]
	if !ok {
		base = fmt.Sprintf("Help me write a description for %s.", field)
	}
	return base + " " + userContext
}

// BuildContext summarizes the family and financial step for grounding.
func BuildContext(step2 models.StepData) string {
	orDefault := func(key, def string) string {
		if v := step2.Trimmed(key); v != "" {
			return v
		}
		return def
	}
	parts := []string{
		"Employment Status: " + orDefault(models.FieldEmploymentStatus, notSpecified),
		"Monthly Income: $" + orDefault(models.FieldMonthlyIncome, "0"),
		"Housing: " + orDefault(models.FieldHousingStatus, notSpecified),
		"Marital Status: " + orDefault(models.FieldMaritalStatus, notSpecified),
		"Dependents: " + orDefault(models.FieldDependents, "0"),
	}
	return strings.Join(parts, ", ")
}
