// Package view renders the registration page: the form, the card list and
// the summary table.
//
// Both views are built from the same roster snapshot in one call, so they
// always hold the same records in the same order. Edit and Remove controls
// post to /students/{id}/edit and /students/{id}/remove; the router maps
// the id to the handler.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/aanand-mishra/student-registry/internal/feedback"
	"github.com/aanand-mishra/student-registry/internal/types"
	"github.com/aanand-mishra/student-registry/internal/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

// Card is one entry in the card list.
type Card struct {
	ID        int64
	Photo     template.URL
	Name      string
	Email     string
	Programme string
	Year      string
	Interests string
	EditURL   string
	RemoveURL string
}

// Row is one line of the summary table.
type Row struct {
	ID        int64
	Name      string
	Email     string
	Programme string
	Year      string
	EditURL   string
	RemoveURL string
}

// Views holds both presentations of the roster.
type Views struct {
	Cards []Card
	Rows  []Row
}

// EditURL and RemoveURL are the action endpoints for a record.
func EditURL(id int64) string   { return fmt.Sprintf("/students/%d/edit", id) }
func RemoveURL(id int64) string { return fmt.Sprintf("/students/%d/remove", id) }

// Build produces one card and one row per record, in roster order.
func Build(students []types.Student) Views {
	v := Views{
		Cards: make([]Card, 0, len(students)),
		Rows:  make([]Row, 0, len(students)),
	}
	for _, s := range students {
		edit, remove := EditURL(s.ID), RemoveURL(s.ID)
		v.Cards = append(v.Cards, Card{
			ID: s.ID,
			// Photo is produced by the photo decoder, never by user text,
			// so it is trusted as a URL.
			Photo:     safePhoto(s.Photo),
			Name:      s.FullName(),
			Email:     s.Email,
			Programme: s.Programme,
			Year:      s.Year,
			Interests: s.Interests,
			EditURL:   edit,
			RemoveURL: remove,
		})
		v.Rows = append(v.Rows, Row{
			ID:        s.ID,
			Name:      s.FullName(),
			Email:     s.Email,
			Programme: s.Programme,
			Year:      s.Year,
			EditURL:   edit,
			RemoveURL: remove,
		})
	}
	return v
}

func safePhoto(url string) template.URL {
	if !strings.HasPrefix(url, "data:image/") {
		return ""
	}
	return template.URL(url)
}

// Page is everything the registration page template needs.
type Page struct {
	Form     types.Form
	Errors   validate.Errors
	Feedback feedback.Message
	Years    []string
	Views
}

// Renderer executes the embedded page template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("page").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the full page.
func (r *Renderer) Render(w io.Writer, p Page) error {
	if p.Years == nil {
		p.Years = types.Years
	}
	if p.Errors == nil {
		p.Errors = validate.Errors{}
	}
	if err := r.tmpl.ExecuteTemplate(w, "index.html", p); err != nil {
		return fmt.Errorf("view: render: %w", err)
	}
	return nil
}
