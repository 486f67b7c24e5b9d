package domain

import (
	"errors"
	"strings"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Identity and verification outcomes. These are expected results of user
// input, not faults.
var (
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrUserNotFound           = errors.New("user not found")
	ErrAlreadyVerified        = errors.New("user is already verified")
	ErrVerifiedOrUnregistered = errors.New("email is verified or not registered")
	ErrInvalidOTP             = errors.New("invalid otp")
	ErrNotVerified            = errors.New("email not verified")
	ErrWrongPassword          = errors.New("wrong password")
	ErrInvalidToken           = errors.New("invalid token")
)

// ErrUndeliverable marks a mail transport failure that retrying cannot fix.
var ErrUndeliverable = errors.New("mail undeliverable")

// ValidationError carries one message per rejected request field.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}
