package flyer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-studio/internal/models"
)

func newTestRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()

	uploadsDir := t.TempDir()
	r, err := NewRenderer(uploadsDir)
	require.NoError(t, err, "Failed to build renderer")

	// Pin the clock so output is fully deterministic
	r.SetClock(func() time.Time {
		return time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	})
	return r, uploadsDir
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err, "Rendered output should be parseable HTML")
	return doc
}

func TestFlyer_EscapesInjectedMarkup(t *testing.T) {
	r, _ := newTestRenderer(t)

	html, err := r.Flyer(models.Listing{
		ID:          "abc123",
		Title:       `<script>alert("xss")</script>`,
		Description: `Great views & "quiet" streets <b>close</b> to town`,
	})
	require.NoError(t, err)

	assert.NotContains(t, html, `<script>alert`, "Injected script must not survive as markup")
	assert.NotContains(t, html, "<b>close</b>")
	assert.Contains(t, html, "&lt;script&gt;", "Injected script should appear only as entities")

	// goquery sees the decoded text, not markup
	doc := parseHTML(t, html)
	assert.Equal(t, `<script>alert("xss")</script>`, doc.Find("h1").Text())
	assert.Empty(t, doc.Find(".description script").Nodes)
}

func TestFlyer_PriceFormatting(t *testing.T) {
	r, _ := newTestRenderer(t)

	tests := []struct {
		name  string
		price string
		want  string
	}{
		{"plain number is localized", "450000", "$450,000"},
		{"already formatted passes through", "$450,000", "$450,000"},
		{"non-numeric passes through", "N/A", "N/A"},
		{"grouped without symbol passes through", "450,000", "450,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := r.Flyer(models.Listing{ID: "p1", Title: "T", Price: tt.price})
			require.NoError(t, err)

			doc := parseHTML(t, html)
			assert.Equal(t, tt.want, doc.Find(".card .value").First().Text())
		})
	}
}

func TestFlyer_SqftGrouping(t *testing.T) {
	r, _ := newTestRenderer(t)

	html, err := r.Flyer(models.Listing{ID: "s1", Title: "T", Sqft: "1850"})
	require.NoError(t, err)
	assert.Contains(t, html, "1,850")
}

func TestFlyer_SectionsPresent(t *testing.T) {
	r, _ := newTestRenderer(t)

	html, err := r.Flyer(models.Listing{
		ID:          "abc123",
		Tone:        "luxury",
		Title:       "Cozy Bungalow",
		Address:     "12 Elm St",
		City:        "Portland",
		State:       "OR",
		Price:       "350000",
		Beds:        "3",
		Baths:       "2",
		Sqft:        "1400",
		YearBuilt:   "1962",
		Description: "A lovely home.",
		Agent: models.Agent{
			Name:      "Dana Reyes",
			Brokerage: "Acme Realty",
			Phone:     "555-0100",
			Email:     "dana@example.com",
		},
	})
	require.NoError(t, err)

	doc := parseHTML(t, html)
	assert.Equal(t, "Cozy Bungalow", doc.Find("h1").Text())
	assert.Equal(t, "luxury", doc.Find(".badge").Text())
	assert.Equal(t, "12 Elm St, Portland, OR", doc.Find(".address").Text())
	assert.Contains(t, doc.Find(".presenter").Text(), "Presented by Dana Reyes")
	assert.Equal(t, 4, doc.Find(".card").Length(), "Price, beds/baths, sqft and year-built cards")
	assert.Equal(t, "A lovely home.", doc.Find(".description").Text())

	footer := doc.Find(".footer").Text()
	assert.Contains(t, footer, "Dana Reyes  •  Acme Realty  •  555-0100  •  dana@example.com")
	assert.Contains(t, footer, "Generated April 1, 2025 at 12:00 PM")
}

func TestFlyer_DeterministicWithPinnedClock(t *testing.T) {
	r, _ := newTestRenderer(t)
	listing := models.Listing{ID: "abc123", Title: "Cozy Bungalow", Price: "350000"}

	first, err := r.Flyer(listing)
	require.NoError(t, err)
	second, err := r.Flyer(listing)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFlyer_InlinesLocalImages(t *testing.T) {
	r, uploadsDir := newTestRenderer(t)

	// Minimal valid PNG header bytes are enough for inlining
	require.NoError(t, os.WriteFile(filepath.Join(uploadsDir, "hero.png"), []byte("\x89PNG fake"), 0o644))

	html, err := r.Flyer(models.Listing{ID: "i1", Title: "T", ImageURL: "/uploads/hero.png"})
	require.NoError(t, err)

	doc := parseHTML(t, html)
	src, ok := doc.Find(".hero img").Attr("src")
	require.True(t, ok, "Hero image should be present")
	assert.True(t, strings.HasPrefix(src, "data:image/png;base64,"), "Local blob refs are embedded as data URIs")
}

func TestFlyer_OmitsExternalAndMissingImages(t *testing.T) {
	r, _ := newTestRenderer(t)

	for _, ref := range []string{
		"https://example.com/photo.jpg",
		"/uploads/never-uploaded.jpg",
		"",
	} {
		html, err := r.Flyer(models.Listing{ID: "i2", Title: "T", ImageURL: ref})
		require.NoError(t, err)

		doc := parseHTML(t, html)
		assert.Zero(t, doc.Find(".hero").Length(), "ref %q must not produce a hero section", ref)
	}
}

func TestFlyer_ImageMIMEByExtension(t *testing.T) {
	r, uploadsDir := newTestRenderer(t)

	tests := []struct {
		file string
		mime string
	}{
		{"a.png", "image/png"},
		{"b.webp", "image/webp"},
		{"c.jpg", "image/jpeg"},
		{"d.bin", "image/jpeg"},
	}
	for _, tt := range tests {
		require.NoError(t, os.WriteFile(filepath.Join(uploadsDir, tt.file), []byte("img"), 0o644))
		uri := r.inlineImage("/uploads/" + tt.file)
		assert.True(t, strings.HasPrefix(string(uri), "data:"+tt.mime+";"), "%s should map to %s", tt.file, tt.mime)
	}
}

func TestSharePage(t *testing.T) {
	r, _ := newTestRenderer(t)

	html, err := r.SharePage("abc123")
	require.NoError(t, err)

	assert.Contains(t, html, `"abc123"`, "Listing id should be embedded as a JS string")
	assert.Contains(t, html, "/api/listings/", "Share page fetches the listing client-side")
	assert.Contains(t, html, "/api/documents/pdf/", "Share page links the PDF download")
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", groupThousands(0))
	assert.Equal(t, "999", groupThousands(999))
	assert.Equal(t, "1,000", groupThousands(1000))
	assert.Equal(t, "1,234,567", groupThousands(1234567))
	assert.Equal(t, "-45,000", groupThousands(-45000))
}
