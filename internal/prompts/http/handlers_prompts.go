package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
)

// ListPrompts returns every prompt of the session
func (h *Handler) ListPrompts(c *gin.Context) {
	prompts, err := h.promptService.ListAll(c.Request.Context(), c.GetString(sessionIDKey))
	if err != nil {
		respondError(c, "prompts.list", err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

// CreatePrompt adds one prompt
func (h *Handler) CreatePrompt(c *gin.Context) {
	var body domain.PromptInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	prompt, err := h.promptService.Create(c.Request.Context(), c.GetString(sessionIDKey), body)
	if err != nil {
		respondError(c, "prompts.create", err, "")
		return
	}

	c.JSON(http.StatusCreated, prompt)
}

// CreateBatch adds many prompts at once, reporting rejected items
func (h *Handler) CreateBatch(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var body batchRequest
	if err := json.Unmarshal(raw, &body); err != nil || body.Prompts == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompts array is required"})
		return
	}

	result, err := h.promptService.CreateBatch(c.Request.Context(), c.GetString(sessionIDKey), body.Prompts)
	if err != nil {
		respondError(c, "prompts.batch", err, "")
		return
	}

	c.JSON(http.StatusCreated, batchResponse{
		Success:      true,
		Added:        len(result.Added),
		Errors:       len(result.Rejected),
		Prompts:      result.Added,
		ErrorDetails: result.Rejected,
	})
}

// RecordUse counts a copy of the prompt. The body is optional; without a
// usable lastUsedAt the server time is stamped.
func (h *Handler) RecordUse(c *gin.Context) {
	id := c.Param("id")
	if strings.TrimSpace(id) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing prompt ID"})
		return
	}

	var body recordUseRequest
	if raw, err := c.GetRawData(); err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = recordUseRequest{}
		}
	}

	prompt, err := h.promptService.RecordUse(c.Request.Context(), c.GetString(sessionIDKey), id, body.LastUsedAt)
	if err != nil {
		respondError(c, "prompts.copy", err, id)
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// UpdatePrompt replaces title, content and tags of a prompt
func (h *Handler) UpdatePrompt(c *gin.Context) {
	id := promptID(c)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing prompt ID"})
		return
	}

	var body domain.PromptInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	prompt, err := h.promptService.Update(c.Request.Context(), c.GetString(sessionIDKey), id, body)
	if err != nil {
		respondError(c, "prompts.update", err, id)
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// DeletePrompt removes a prompt
func (h *Handler) DeletePrompt(c *gin.Context) {
	id := promptID(c)
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing prompt ID"})
		return
	}

	if err := h.promptService.Delete(c.Request.Context(), c.GetString(sessionIDKey), id); err != nil {
		respondError(c, "prompts.delete", err, id)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// promptID prefers the ?id= query parameter over the path segment
func promptID(c *gin.Context) string {
	if id := strings.TrimSpace(c.Query("id")); id != "" {
		return id
	}
	return strings.TrimSpace(c.Param("id"))
}
