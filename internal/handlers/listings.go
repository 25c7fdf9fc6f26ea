package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"listing-studio/internal/copywriter"
	"listing-studio/internal/models"
	"listing-studio/internal/store"
)

// ListingHandler handles listing CRUD and copy generation.
type ListingHandler struct {
	store      *store.Store
	copywriter *copywriter.Client
	log        logrus.FieldLogger
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(st *store.Store, cw *copywriter.Client, logger logrus.FieldLogger) *ListingHandler {
	return &ListingHandler{
		store:      st,
		copywriter: cw,
		log:        logger.WithField("component", "handlers"),
	}
}

// Generate produces a title and description from property facts.
// Returns 503 when no copywriter credential is configured.
func (h *ListingHandler) Generate(c *gin.Context) {
	if !h.copywriter.Enabled() {
		respondError(c, http.StatusServiceUnavailable, codeNotConfigured,
			"Copy generation requires an API credential. Set OPENAI_API_KEY.")
		return
	}

	var facts copywriter.Facts
	if err := c.ShouldBindJSON(&facts); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidPayload, err.Error())
		return
	}

	result, err := h.copywriter.Generate(c.Request.Context(), facts)
	if err != nil {
		h.log.WithError(err).Error("Copy generation failed")
		respondError(c, http.StatusInternalServerError, codeGeneration,
			"Copy generation failed. Please try again.")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Save persists a fully formed listing. The client supplies the id; a
// record without one is rejected.
func (h *ListingHandler) Save(c *gin.Context) {
	var listing models.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidPayload, err.Error())
		return
	}

	if err := h.store.Save(listing); err != nil {
		if errors.Is(err, store.ErrMissingID) {
			respondError(c, http.StatusBadRequest, codeValidation, "Listing id is required")
			return
		}
		h.log.WithError(err).Error("Failed to save listing")
		respondError(c, http.StatusInternalServerError, codeInternal, "Failed to save listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// List returns the full stored sequence, newest first.
func (h *ListingHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ReadAll())
}

// Get returns one listing by id.
func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.store.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, codeNotFound, "Listing not found")
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Delete removes every record with the given id. Unknown ids still
// succeed, reporting zero deletions.
func (h *ListingHandler) Delete(c *gin.Context) {
	removed, err := h.store.DeleteByID(c.Param("id"))
	if err != nil {
		h.log.WithError(err).Error("Failed to delete listing")
		respondError(c, http.StatusInternalServerError, codeInternal, "Failed to delete listing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": removed})
}
