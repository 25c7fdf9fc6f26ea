package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"listing-studio/internal/flyer"
	"listing-studio/internal/models"
	"listing-studio/internal/render"
	"listing-studio/internal/store"
)

// DocumentHandler renders flyers, PDFs and the public share page.
type DocumentHandler struct {
	store *store.Store
	flyer *flyer.Renderer
	pdf   *render.PDFRenderer
	log   logrus.FieldLogger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(st *store.Store, fr *flyer.Renderer, pr *render.PDFRenderer, logger logrus.FieldLogger) *DocumentHandler {
	return &DocumentHandler{
		store: st,
		flyer: fr,
		pdf:   pr,
		log:   logger.WithField("component", "handlers"),
	}
}

// RenderFromBody renders a PDF flyer from the listing in the request body.
func (h *DocumentHandler) RenderFromBody(c *gin.Context) {
	var listing models.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidPayload, err.Error())
		return
	}
	h.renderListing(c, listing)
}

// RenderByID renders a PDF flyer for a stored listing.
func (h *DocumentHandler) RenderByID(c *gin.Context) {
	listing, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, codeNotFound, "Listing not found")
		return
	}
	h.renderListing(c, listing)
}

// renderListing runs the flyer-to-PDF pipeline and streams the result as a
// download. Failures return a generic error body; the underlying cause is
// only logged.
func (h *DocumentHandler) renderListing(c *gin.Context, listing models.Listing) {
	html, err := h.flyer.Flyer(listing)
	if err != nil {
		h.log.WithError(err).WithField("id", listing.ID).Error("Flyer template failed")
		respondError(c, http.StatusInternalServerError, codeRender, "PDF generation failed")
		return
	}

	pdf, err := h.pdf.RenderPDF(c.Request.Context(), html)
	if err != nil {
		h.log.WithError(err).WithField("id", listing.ID).Error("PDF render failed")
		respondError(c, http.StatusInternalServerError, codeRender, "PDF generation failed")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.Filename(listing.ID)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// SharePage serves the public HTML view for a listing id. The page fetches
// the record client-side, so a stale or unknown id degrades in the browser
// rather than here.
func (h *DocumentHandler) SharePage(c *gin.Context) {
	html, err := h.flyer.SharePage(c.Param("id"))
	if err != nil {
		h.log.WithError(err).Error("Share page template failed")
		respondError(c, http.StatusInternalServerError, codeRender, "Share page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
