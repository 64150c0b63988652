package validation

import (
	"html"
	"strings"
	"unicode"
)

// SanitizeInput trims s, removes backslash escapes and control characters,
// and HTML-escapes the result. Newlines and tabs inside the text are kept.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	s = StripSlashes(s)
	s = stripControl(s)
	return html.EscapeString(s)
}

// StripSlashes removes backslash escapes; a doubled backslash becomes one
func StripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\r' {
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

var truthy = map[string]bool{
	"1":    true,
	"true": true,
	"on":   true,
	"yes":  true,
}

// IsTruthy reports whether a checkbox-style form value means "checked"
func IsTruthy(raw string) bool {
	return truthy[strings.ToLower(strings.TrimSpace(raw))]
}
