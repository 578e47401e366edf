package validate

import (
	"errors"
	"testing"

	"github.com/ainager-onboarding/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifyBody struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,otpcode"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&verifyBody{Email: "ceo@acme.com", Code: "012345"}))
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(&verifyBody{Email: "not-an-email", Code: "12a456"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "field 'email' failed 'email'")
	assert.Contains(t, err.Error(), "field 'code' failed 'otpcode'")
}

func TestIsOTPCode(t *testing.T) {
	assert.True(t, IsOTPCode("000000"))
	assert.False(t, IsOTPCode("12345"))
	assert.False(t, IsOTPCode("1234567"))
	assert.False(t, IsOTPCode("١٢٣٤٥٦"))
}
