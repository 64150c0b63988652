package validation

import (
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Regex patterns
var (
	// Digits, spaces, plus, dash and parentheses only
	phoneCharsRegex = regexp.MustCompile(`^[0-9 ()+\-]+$`)
)

// MinPhoneDigits is the minimum number of digits a phone number must carry
const MinPhoneDigits = 10

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("trimmed_min", TrimmedMin)
	_ = v.RegisterValidation("contact_phone", ContactPhone)

	// Report errors under the form field names (firstName, ...) instead of
	// the Go struct field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// TrimmedMin checks the rune length of the trimmed value against the tag param
func TrimmedMin(fl validator.FieldLevel) bool {
	min, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= min
}

// ContactPhone accepts digits, spaces, + - ( ) with at least MinPhoneDigits digits
func ContactPhone(fl validator.FieldLevel) bool {
	return IsValidPhone(fl.Field().String())
}

// IsValidPhone is the plain-string form of the contact_phone rule
func IsValidPhone(val string) bool {
	if !phoneCharsRegex.MatchString(val) {
		return false
	}
	return CountDigits(val) >= MinPhoneDigits
}

// CountDigits counts the ASCII digits in s
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
