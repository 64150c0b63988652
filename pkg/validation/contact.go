package validation

import (
	"linire-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// ContactValidator checks sanitized contact requests
type ContactValidator struct {
	validate *validator.Validate
}

// NewContactValidator builds a validator with the custom contact rules registered
func NewContactValidator() *ContactValidator {
	v := validator.New()
	RegisterValidators(v)
	return &ContactValidator{validate: v}
}

// Validate checks every field of req and collects all problems at once.
// It has no side effects.
func (cv *ContactValidator) Validate(req *domain.ContactRequest) domain.ValidationResult {
	if err := cv.validate.Struct(req); err != nil {
		return domain.ValidationResult{
			IsValid: false,
			Errors:  FormatFieldErrors(err),
		}
	}
	return domain.ValidationResult{IsValid: true}
}
