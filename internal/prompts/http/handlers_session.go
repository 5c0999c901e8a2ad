package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/identity"
)

// Session checks whether a session exists or signs a new one up
func (h *Handler) Session(c *gin.Context) {
	var body sessionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !identity.Valid(body.SessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID is required"})
		return
	}

	ctx := c.Request.Context()
	switch body.Action {
	case actionCheck:
		exists, err := h.sessionService.Exists(ctx, body.SessionID)
		if err != nil {
			respondError(c, "session.check", err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"exists": exists})

	case actionCreate:
		if err := h.sessionService.Create(ctx, body.SessionID); err != nil {
			respondError(c, "session.create", err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
	}
}
