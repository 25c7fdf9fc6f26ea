package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"listing-studio/internal/blob"
)

// UploadHandler accepts listing image uploads into the blob store.
type UploadHandler struct {
	blobs *blob.Store
	log   logrus.FieldLogger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(blobs *blob.Store, logger logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{
		blobs: blobs,
		log:   logger.WithField("component", "handlers"),
	}
}

// Upload stores one image file from the "image" multipart field and
// returns its retrievable reference path.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidPayload, "Expected one file in the \"image\" field")
		return
	}

	ref, err := h.blobs.Save(file)
	if err != nil {
		switch {
		case errors.Is(err, blob.ErrUnsupportedType):
			respondError(c, http.StatusBadRequest, codeValidation, "Only jpeg, png and webp images are accepted")
		case errors.Is(err, blob.ErrTooLarge):
			respondError(c, http.StatusBadRequest, codeValidation, "Image exceeds the size limit")
		default:
			h.log.WithError(err).Error("Failed to store upload")
			respondError(c, http.StatusInternalServerError, codeInternal, "Failed to store image")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"imageUrl": ref})
}
