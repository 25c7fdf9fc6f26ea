package handlers

import "github.com/gin-gonic/gin"

// Stable machine codes for the error envelope.
const (
	codeInvalidPayload = "invalid_payload"
	codeValidation     = "validation_error"
	codeNotFound       = "not_found"
	codeGeneration     = "generation_failed"
	codeRender         = "render_failed"
	codeNotConfigured  = "copywriter_not_configured"
	codeInternal       = "internal_error"
)

// respondError writes the JSON error envelope. Raw upstream detail never
// goes through here; callers log it and pass a generic message instead.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}
