package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps form field names to user-friendly labels
var FieldLabels = map[string]string{
	"firstName": "First name",
	"lastName":  "Last name",
	"email":     "Email address",
	"phone":     "Phone number",
	"service":   "Service",
	"message":   "Message",
	"consent":   "Consent",
}

// fieldMessages overrides the generic wording for specific field/tag pairs
var fieldMessages = map[string]map[string]string{
	"email": {
		"email": "Please enter a valid email address",
	},
	"phone": {
		"contact_phone": "Please enter a valid phone number",
	},
	"service": {
		"notblank": "Please select a service",
	},
	"message": {
		"trimmed_min": "Message must be at least %s characters long",
	},
	"consent": {
		"required": "You must agree to the privacy policy",
	},
}

// FormatFieldErrors converts validator.ValidationErrors into a field -> message map.
// Only the first failing rule of each field is reported.
func FormatFieldErrors(err error) map[string]string {
	result := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// Not a validation error, return generic message
		result["form"] = err.Error()
		return result
	}

	for _, e := range validationErrors {
		field := e.Field()
		if _, seen := result[field]; seen {
			continue
		}
		result[field] = formatSingleError(e)
	}

	return result
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	field := e.Field()
	tag := e.Tag()
	param := e.Param()

	if msgs, ok := fieldMessages[field]; ok {
		if msg, ok := msgs[tag]; ok {
			if strings.Contains(msg, "%s") {
				return fmt.Sprintf(msg, param)
			}
			return msg
		}
	}

	label := getFieldLabel(field)
	switch tag {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", label)

	case "min", "trimmed_min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)

	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)

	case "contact_phone":
		return fmt.Sprintf("%s must be a valid phone number", label)

	default:
		// Fallback for unknown tags
		return fmt.Sprintf("%s is invalid", label)
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts camelCase to spaced words with a leading capital
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i == 0 {
			result.WriteString(strings.ToUpper(string(r)))
			continue
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
			r = r + ('a' - 'A')
		}
		result.WriteRune(r)
	}
	return result.String()
}
