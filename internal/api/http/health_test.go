package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func runHealthCheck(t *testing.T, store Pinger, path string, wantCode int) HealthResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewHealthHandler("test-service", "1.0.0", store).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, wantCode, rr.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	return response
}

func TestHealthCheck(t *testing.T) {
	response := runHealthCheck(t, stubPinger{}, "/health", http.StatusOK)

	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "test-service", response.Service)
	assert.Equal(t, "1.0.0", response.Version)
	assert.Equal(t, "up", response.Store)
	assert.False(t, response.Timestamp.IsZero())
}

func TestHealthCheck_StoreDown(t *testing.T) {
	for _, path := range []string{"/health", "/healthz"} {
		response := runHealthCheck(t, stubPinger{err: errors.New("connection refused")}, path, http.StatusServiceUnavailable)

		assert.Equal(t, "degraded", response.Status, path)
		assert.Equal(t, StoreDown, response.Store, path)
	}
}

func TestHealthCheck_NoStore(t *testing.T) {
	response := runHealthCheck(t, nil, "/health", http.StatusOK)
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, StoreDisabled, response.Store)
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	NewHealthHandler("test-service", "1.0.0", nil).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
