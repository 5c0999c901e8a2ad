package http

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/service"
)

// SessionCookie carries the session id on every prompts request
const SessionCookie = "session_id"

const (
	sessionIDKey = "session_id"

	actionCheck  = "check"
	actionCreate = "create"
)

// Handler serves the prompts and session endpoints
type Handler struct {
	promptService  *service.PromptService
	sessionService *service.SessionService
}

// New creates a new Handler
func New(promptService *service.PromptService, sessionService *service.SessionService) *Handler {
	return &Handler{
		promptService:  promptService,
		sessionService: sessionService,
	}
}

type sessionRequest struct {
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`
}

type batchRequest struct {
	Prompts []json.RawMessage `json:"prompts"`
}

type batchResponse struct {
	Success      bool               `json:"success"`
	Added        int                `json:"added"`
	Errors       int                `json:"errors"`
	Prompts      []domain.Prompt    `json:"prompts"`
	ErrorDetails []domain.Rejection `json:"errorDetails"`
}

type recordUseRequest struct {
	LastUsedAt *time.Time `json:"lastUsedAt"`
}
