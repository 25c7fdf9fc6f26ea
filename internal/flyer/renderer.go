// Package flyer builds the HTML documents the rest of the pipeline
// consumes: the print-oriented PDF flyer and the public share page.
package flyer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"listing-studio/internal/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer turns a listing record into a self-contained HTML document.
//
// Rendering is pure: given the same listing and the same clock reading the
// output is byte-identical. Every listing field goes through html/template's
// contextual escaping, so untrusted titles or descriptions cannot inject
// markup.
type Renderer struct {
	uploadsDir string
	now        func() time.Time
	tmpl       *template.Template
}

// NewRenderer creates a renderer that resolves local image references
// against uploadsDir. The clock defaults to time.Now.
func NewRenderer(uploadsDir string) (*Renderer, error) {
	r := &Renderer{
		uploadsDir: uploadsDir,
		now:        time.Now,
	}

	tmpl, err := template.New("flyer").Funcs(template.FuncMap{
		"money":   formatMoney,
		"grouped": formatGrouped,
		"inline":  r.inlineImage,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.tmpl = tmpl
	return r, nil
}

// SetClock replaces the generation-timestamp clock. Tests use this to make
// flyer output fully deterministic.
func (r *Renderer) SetClock(now func() time.Time) {
	r.now = now
}

type flyerData struct {
	Listing     models.Listing
	AddressLine string
	Contact     string
	Generated   string
}

// Flyer renders the print document for one listing.
func (r *Renderer) Flyer(listing models.Listing) (string, error) {
	data := flyerData{
		Listing:     listing,
		AddressLine: listing.AddressLine(),
		Contact:     contactLine(listing.Agent),
		Generated:   r.now().Format("January 2, 2006 at 3:04 PM"),
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "flyer.html.tmpl", data); err != nil {
		return "", fmt.Errorf("failed to render flyer: %w", err)
	}
	return buf.String(), nil
}

// SharePage renders the public page for a listing id. The page fetches the
// record client-side so it always shows current store contents.
func (r *Renderer) SharePage(id string) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "share.html.tmpl", struct{ ID string }{ID: id}); err != nil {
		return "", fmt.Errorf("failed to render share page: %w", err)
	}
	return buf.String(), nil
}

// contactLine joins the non-empty agent fragments with separator glyphs.
func contactLine(a models.Agent) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Name, a.Brokerage, a.Phone, a.Email} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "  •  "
		}
		out += p
	}
	return out
}
