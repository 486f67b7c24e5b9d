package validate

import (
	"errors"
	"testing"

	"github.com/go-blog-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_Valid(t *testing.T) {
	err := Struct(domain.VerifyUserRequest{Email: "a@x.com", OTP: "012345"})
	assert.NoError(t, err)
}

func TestStruct_FieldMessagesUseJSONNames(t *testing.T) {
	err := Struct(domain.SignupRequest{Email: "nope", Password: "short"})
	require.Error(t, err)

	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "email must be a valid email")
	assert.Contains(t, ve.Fields, "password must be at least 8 characters")
	assert.Contains(t, ve.Fields, "firstName is required")
	assert.Contains(t, ve.Fields, "lastName is required")
}

func TestStruct_OTPMustBeSixDigits(t *testing.T) {
	err := Struct(domain.VerifyUserRequest{Email: "a@x.com", OTP: "12345"})
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"otp must be exactly 6 characters"}, ve.Fields)

	err = Struct(domain.VerifyUserRequest{Email: "a@x.com", OTP: "12a456"})
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"otp must be numeric"}, ve.Fields)
}
