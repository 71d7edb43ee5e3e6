// Package render turns derived views into HTML. Output depends only on the page value passed in,
// so rendering the same page twice yields the same bytes.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"vanta-site/internal/domain"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

type Renderer struct {
	tmpl *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.New("pages").Funcs(template.FuncMap{
		"money":    Money,
		"ago":      Ago,
		"when":     When,
		"brackets": brackets,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Market(w io.Writer, page MarketPage) error {
	return r.execute(w, "market.html", page)
}

func (r *Renderer) Team(w io.Writer, page TeamPage) error {
	return r.execute(w, "team.html", page)
}

// execute renders into a buffer first so a template error never leaves a half-written page.
func (r *Renderer) execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Money formats cents as dollars with thousands separators.
func Money(cents int) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s$%s.%02d", sign, humanize.Comma(int64(cents/100)), cents%100)
}

// Ago is relative to now rather than the wall clock so pages stay reproducible.
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func brackets() []string { return domain.Brackets }

func When(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.UTC().Format("Jan 2, 2006 15:04 UTC")
}
