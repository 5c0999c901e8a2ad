package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptshelf/promptshelf-backend/internal/logging"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
)

// respondError maps service errors onto status codes. Store failures are
// logged with details and answered generically.
func respondError(c *gin.Context, operation string, err error, promptID string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
	case errors.Is(err, domain.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Prompt not found", "id": promptID})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Session already exists"})
	default:
		logging.FromContext(c.Request.Context()).Error().
			Err(err).
			Str("operation", operation).
			Msg("handler error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
