package http

import "github.com/gin-gonic/gin"

// Register registers the prompts and session routes. sessionMiddleware runs
// in front of the session endpoint only.
func (h *Handler) Register(rg *gin.RouterGroup, sessionMiddleware ...gin.HandlerFunc) {
	rg.OPTIONS("/prompts", h.Preflight)
	rg.OPTIONS("/prompts/*path", h.Preflight)
	rg.OPTIONS("/session", h.Preflight)

	sessionHandlers := append(append([]gin.HandlerFunc{}, sessionMiddleware...), h.Session)
	rg.POST("/session", sessionHandlers...)

	prompts := rg.Group("/prompts", RequireSession())
	prompts.GET("", h.ListPrompts)
	prompts.POST("", h.CreatePrompt)
	prompts.POST("/batch", h.CreateBatch)
	prompts.POST("/:id/copy", h.RecordUse)
	prompts.PUT("", h.UpdatePrompt)
	prompts.PUT("/:id", h.UpdatePrompt)
	prompts.DELETE("", h.DeletePrompt)
	prompts.DELETE("/:id", h.DeletePrompt)
}
