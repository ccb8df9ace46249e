package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/yuin/goldmark"

	"outfit-advisor/internal/advisor"
	"outfit-advisor/internal/weather"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page is the data handed to the index template.
type Page struct {
	City       string
	Units      weather.Units
	Imperial   bool
	Sidebar    string
	Result     advisor.Result
	Suggestion template.HTML
}

// Renderer turns a cycle result into the HTML page.
type Renderer struct {
	tmpl    *template.Template
	md      goldmark.Markdown
	sidebar string
}

// NewRenderer parses the embedded templates. sidebar is the informational
// line shown under the settings.
func NewRenderer(sidebar string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		tmpl:    tmpl,
		md:      goldmark.New(), // raw HTML in the source is omitted
		sidebar: sidebar,
	}, nil
}

// Render writes the page for res. Output may be partial on error, so callers
// serving HTTP render into a buffer first.
func (r *Renderer) Render(w io.Writer, res advisor.Result) error {
	page := Page{
		City:     res.Query.City,
		Units:    res.Query.Units,
		Imperial: res.Query.Units == weather.UnitsImperial,
		Sidebar:  r.sidebar,
		Result:   res,
	}
	if res.Suggestion != nil {
		html, err := r.Markdown(res.Suggestion.Text)
		if err != nil {
			return err
		}
		page.Suggestion = html
	}
	if err := r.tmpl.ExecuteTemplate(w, "index.html", page); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}

// Markdown converts model output to HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}
