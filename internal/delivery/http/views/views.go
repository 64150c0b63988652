// Package views holds the admin back office HTML templates.
package views

import (
	"embed"
	"html"
	"html/template"
	"time"

	"linire-backend/internal/domain"
)

//go:embed templates/*.html
var files embed.FS

// Load parses every admin template
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}

func Funcs() template.FuncMap {
	return template.FuncMap{
		// Submission text is stored HTML-escaped; templates escape again on output.
		"plain": html.UnescapeString,
		"date": func(t time.Time) string {
			return t.Format("Jan 2, 2006 15:04")
		},
		"serviceLabel": domain.ServiceLabel,
		"statusClass": func(s domain.SubmissionStatus) string {
			return "status-" + string(s)
		},
	}
}
