package validation_test

import (
	"testing"

	"linire-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  Jo  ", "Jo"},
		{"escapes html", `<b>"Hi"</b> & 'bye'`, "&lt;b&gt;&#34;Hi&#34;&lt;/b&gt; &amp; &#39;bye&#39;"},
		{"strips slashes", `O\'Brien`, "O&#39;Brien"},
		{"keeps escaped backslash", `a\\b`, `a\b`},
		{"drops control characters", "line1\r\nline2\x00\x07", "line1\nline2"},
		{"empty stays empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, validation.SanitizeInput(tc.in))
		})
	}
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "on", "true", "TRUE", " yes "} {
		assert.True(t, validation.IsTruthy(v), v)
	}
	for _, v := range []string{"", "0", "off", "false", "no", "maybe"} {
		assert.False(t, validation.IsTruthy(v), v)
	}
}

func TestCountDigits(t *testing.T) {
	assert.Equal(t, 10, validation.CountDigits("(097) 745-0621"))
	assert.Equal(t, 0, validation.CountDigits("abc"))
}
