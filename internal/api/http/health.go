package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promptshelf/promptshelf-backend/internal/logging"
)

const storePingTimeout = time.Second

// Store states reported by the health endpoints
const (
	StoreUp       = "up"
	StoreDown     = "down"
	StoreDisabled = "disabled"
)

// Pinger reports whether the prompt store answers
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Store     string    `json:"store,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	store       Pinger
}

func NewHealthHandler(serviceName, version string, store Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		store:       store,
	}
}

// HealthCheck answers 200 "healthy" while the store is reachable and 503
// "degraded" when a configured store does not answer its ping
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	store := h.storeState(c.Request.Context())

	code, status := http.StatusOK, "healthy"
	if store == StoreDown {
		code, status = http.StatusServiceUnavailable, "degraded"
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Store:     store,
	})
}

func (h *HealthHandler) storeState(ctx context.Context) string {
	if h.store == nil {
		return StoreDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, storePingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("store ping failed")
		return StoreDown
	}
	return StoreUp
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
