package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

type sampleForm struct {
	Username string `json:"username" validate:"required,max=10,username"`
	Email    string `json:"email" validate:"omitempty,email"`
	StartAt  string `json:"start_at" validate:"omitempty,clock"`
	Language string `json:"language" validate:"omitempty,oneof=es en de fr"`
}

func TestCheckReturnsFieldMessages(t *testing.T) {
	v := New()
	err := v.Check(sampleForm{Email: "nope", StartAt: "25:00", Language: "it"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, []string{"This field is required."}, appErr.Details["username"])
	assert.Equal(t, []string{"Enter a valid email address."}, appErr.Details["email"])
	assert.Equal(t, []string{"Enter a valid time."}, appErr.Details["start_at"])
	assert.Contains(t, appErr.Details, "language")
}

func TestCheckUsernameRules(t *testing.T) {
	v := New()
	appErr := appErrors.FromError(v.Check(sampleForm{Username: "bad name!"}))
	require.NotNil(t, appErr)
	assert.Contains(t, appErr.Details["username"][0], "Enter a valid username")

	appErr = appErrors.FromError(v.Check(sampleForm{Username: "waytoolongusername"}))
	require.NotNil(t, appErr)
	assert.Equal(t, []string{"Ensure this field has no more than 10 characters."}, appErr.Details["username"])

	assert.NoError(t, v.Check(sampleForm{Username: "j.doe+1@x"}))
}

func TestIndependentInstances(t *testing.T) {
	first := New()
	second := New()
	err := second.Check(sampleForm{})
	require.Error(t, err)
	assert.Equal(t, []string{"This field is required."}, appErrors.FromError(err).Details["username"])
	assert.NotNil(t, first)
}

func TestErrorsWithPlainError(t *testing.T) {
	out := New().Errors(errors.New("boom"))
	assert.Equal(t, []string{"boom"}, out[appErrors.NonFieldErrors])
}

func TestParseClock(t *testing.T) {
	got, ok := ParseClock("25:00")
	assert.False(t, ok)
	assert.Empty(t, got)

	got, ok = ParseClock("09:05")
	assert.True(t, ok)
	assert.Equal(t, "09:05:00", got)

	got, ok = ParseClock("18:30:15")
	assert.True(t, ok)
	assert.Equal(t, "18:30:15", got)
}

func TestCheckParameterisedMessages(t *testing.T) {
	type codeForm struct {
		Code  int    `json:"code" validate:"gte=0"`
		Title string `json:"title" validate:"max=3"`
	}

	require.NotPanics(t, func() { New() })

	appErr := appErrors.FromError(New().Check(codeForm{Code: -1, Title: "Algebra"}))
	require.NotNil(t, appErr)
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 0."}, appErr.Details["code"])
	assert.Equal(t, []string{"Ensure this field has no more than 3 characters."}, appErr.Details["title"])
}
