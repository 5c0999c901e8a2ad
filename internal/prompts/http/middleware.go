package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/identity"
)

// RequireSession rejects requests without a session_id cookie
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, ok := sessionFromCookie(c)
		if !ok {
			abortSessionRequired(c)
			return
		}

		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// NoMethod answers requests whose path is routed for other methods only.
// Under the prompts path of any of bases the session is checked first, so a
// caller without one gets 400 rather than 405.
func NoMethod(bases ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPromptsPath(c.Request.URL.Path, bases) {
			if _, ok := sessionFromCookie(c); !ok {
				abortSessionRequired(c)
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	}
}

// Preflight answers CORS preflight requests that reach the router
func (h *Handler) Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

func sessionFromCookie(c *gin.Context) (string, bool) {
	sessionID, err := c.Cookie(SessionCookie)
	if err != nil || !identity.Valid(sessionID) {
		return "", false
	}
	return sessionID, true
}

func abortSessionRequired(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Session required"})
}

func isPromptsPath(path string, bases []string) bool {
	for _, base := range bases {
		root := strings.TrimSuffix(base, "/") + "/prompts"
		if path == root || strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}
