// Package web holds the HTML templates rendered by the API handlers.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

// Funcs are the helpers available inside every template
var Funcs = template.FuncMap{
	"fixed": func(d decimal.Decimal, places int) string {
		return d.StringFixed(int32(places))
	},
	// amount shows at least 2 places and never drops stored precision
	"amount": func(d decimal.Decimal) string {
		if d.Equal(d.Truncate(2)) {
			return d.StringFixed(2)
		}
		return d.String()
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
}

// Templates parses every embedded page
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "templates/*.html")
}
