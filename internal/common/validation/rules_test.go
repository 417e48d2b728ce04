package validation

import (
	"testing"
	"time"

	"social-support-wizard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStep1() models.StepData {
	return models.StepData{
		"name": "Ann", "nationalId": "123", "dateOfBirth": "1990-01-01", "gender": "female",
		"address": "1 Rd", "city": "X", "state": "Y", "country": "Z",
		"phone": "+15551234567", "email": "a@b.com",
	}
}

func TestValidateStep1_Valid(t *testing.T) {
	res := ValidateStep(1, validStep1())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateStep1_OnlyEmailInvalid(t *testing.T) {
	data := validStep1()
	data["email"] = "not-an-email"

	res := ValidateStep(1, data)
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "email", res.Errors[0].Field)
	assert.Equal(t, CodeInvalidEmail, res.Errors[0].Code)
	assert.Equal(t, "validation.email", res.Errors[0].MessageKey())
}

func TestValidateStep_RequiredEverywhere(t *testing.T) {
	for step := models.MinStep; step <= models.MaxStep; step++ {
		res := ValidateStep(step, models.NewStepData(models.FieldsForStep(step)))
		assert.False(t, res.Valid)
		assert.Len(t, res.Errors, len(models.FieldsForStep(step)))
		for _, e := range res.Errors {
			assert.Equal(t, CodeRequired, e.Code)
		}
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		field string
		value string
		code  string
	}{
		{field: "phone", value: "12345", code: CodeInvalidPhone},
		{field: "phone", value: "(555) 123-4567", code: ""},
		{field: "dateOfBirth", value: "01/02/1990", code: CodeInvalidDate},
		{field: "dateOfBirth", value: "1990-02-30", code: CodeInvalidDate},
		{field: "gender", value: "robot", code: CodeInvalidEnum},
		{field: "housingStatus", value: "livingWithFamily", code: ""},
		{field: "dependents", value: "two", code: CodeInvalidNumber},
		{field: "dependents", value: "-1", code: CodeNegativeNumber},
		{field: "dependents", value: "1.5", code: CodeNotWholeNumber},
		{field: "dependents", value: "0", code: ""},
		{field: "dependents", value: "2.0", code: ""},
		{field: "dependents", value: "1e1", code: ""},
		{field: "dependents", value: "1e20", code: CodeInvalidNumber},
		{field: "monthlyIncome", value: "1200.75", code: ""},
		{field: "monthlyIncome", value: "-0.01", code: CodeNegativeNumber},
		{field: "monthlyIncome", value: "   ", code: CodeRequired},
		{field: "reasonForApplying", value: "rent arrears", code: ""},
	}

	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			err := ValidateField(tt.field, tt.value)
			if tt.code == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestValidationResult_Helpers(t *testing.T) {
	res := ValidateStep(2, models.StepData{
		"maritalStatus": "single", "dependents": "x", "employmentStatus": "student",
		"monthlyIncome": "10", "housingStatus": "rented",
	})
	assert.True(t, res.HasErrors("dependents"))
	assert.False(t, res.HasErrors("monthlyIncome"))
	assert.Equal(t, []string{"dependents: value must be numeric"}, res.GetErrorMessages())
	assert.Contains(t, res.ByField(), "dependents")
}

func TestApplicationSchema(t *testing.T) {
	schema, err := CompileSchema(ApplicationSchema)
	require.NoError(t, err)

	state := models.InitialFormState()
	state.Step1 = validStep1()
	state.Step2 = models.StepData{
		"maritalStatus": "married", "dependents": "2", "employmentStatus": "employed",
		"monthlyIncome": "1500", "housingStatus": "rented",
	}
	state.Step3 = models.StepData{
		"currentFinancialSituation": "a", "employmentCircumstances": "b", "reasonForApplying": "c",
	}
	payload, err := models.NewApplicationPayload(state, time.Now())
	require.NoError(t, err)

	res, err := schema.ValidateDocument(payload)
	require.NoError(t, err)
	assert.True(t, res.Valid, res.GetErrorMessages())

	payload.FamilyFinancial.HousingStatus = "castle"
	payload.SituationDescriptions["reasonForApplying"] = ""
	res, err = schema.ValidateDocument(payload)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
}
