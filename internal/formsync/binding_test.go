package formsync

import (
	"testing"

	"social-support-wizard/internal/common/validation"
	"social-support-wizard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBinding_SetNotifiesAndMarksDirty(t *testing.T) {
	b := NewBinding()
	var got []string
	unwatch := b.Watch(func(field, value string) { got = append(got, field+"="+value) })

	b.Set("name", "Ann")
	assert.Equal(t, "Ann", b.Get("name"))
	assert.True(t, b.Dirty("name"))
	assert.Equal(t, []string{"name=Ann"}, got)

	unwatch()
	b.Set("name", "Bob")
	assert.Len(t, got, 1)
}

func TestBinding_ApplyIsSilent(t *testing.T) {
	b := NewBinding()
	calls := 0
	b.Watch(func(string, string) { calls++ })
	b.Set("name", "Ann")

	b.Apply(models.StepData{"email": "a@b.co"})

	assert.Equal(t, 1, calls)
	assert.Equal(t, models.StepData{"email": "a@b.co"}, b.Values())
	assert.False(t, b.Dirty("name"))
}

func TestBinding_Errors(t *testing.T) {
	b := NewBinding()
	b.SetErrors([]validation.ValidationError{
		{Field: "email", Code: validation.CodeInvalidEmail},
		{Field: "email", Code: validation.CodeRequired},
		{Field: "phone", Code: validation.CodeInvalidPhone},
	})

	errs := b.Errors()
	assert.Len(t, errs, 2)
	assert.Equal(t, validation.CodeInvalidEmail, errs["email"].Code)

	b.ClearErrors()
	assert.Empty(t, b.Errors())
}
