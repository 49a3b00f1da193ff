package services

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrDuplicatePhone = errors.New("phone number already registered")
	ErrConflict       = errors.New("already exists")
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("forbidden")
	ErrUnauthorized   = errors.New("invalid credentials")
	ErrUnavailable    = errors.New("not configured")
)

var validate = validator.New()

// ValidateStruct runs the validate tags of a request DTO. Failures are
// returned as validator.ValidationErrors.
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
