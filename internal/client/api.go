// Package client talks to the prompts and session endpoints and keeps the
// local login state a command-line user carries between invocations.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
)

// DefaultBaseURL is where a local API server listens
const DefaultBaseURL = "http://localhost:8080"

const sessionCookie = "session_id"

// Session is the credential every prompt call carries
type Session struct {
	ID       string
	Username string
}

// APIError is a non-2xx answer from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// BatchResponse is the outcome of CreateBatch
type BatchResponse struct {
	Success      bool               `json:"success"`
	Added        int                `json:"added"`
	Errors       int                `json:"errors"`
	Prompts      []domain.Prompt    `json:"prompts"`
	ErrorDetails []domain.Rejection `json:"errorDetails"`
}

// API is a typed client for the prompts and session endpoints
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI creates a client for baseURL. A nil httpClient gets a default with
// a 10 second timeout.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &API{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (a *API) ListPrompts(ctx context.Context, s Session) ([]domain.Prompt, error) {
	var out struct {
		Prompts []domain.Prompt `json:"prompts"`
	}
	if err := a.do(ctx, http.MethodGet, "/prompts", &s, nil, &out); err != nil {
		return nil, err
	}
	if out.Prompts == nil {
		out.Prompts = []domain.Prompt{}
	}
	return out.Prompts, nil
}

func (a *API) CreatePrompt(ctx context.Context, s Session, in domain.PromptInput) (*domain.Prompt, error) {
	var out domain.Prompt
	if err := a.do(ctx, http.MethodPost, "/prompts", &s, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) UpdatePrompt(ctx context.Context, s Session, id string, in domain.PromptInput) (*domain.Prompt, error) {
	var out domain.Prompt
	if err := a.do(ctx, http.MethodPut, "/prompts/"+url.PathEscape(id), &s, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeletePrompt(ctx context.Context, s Session, id string) error {
	return a.do(ctx, http.MethodDelete, "/prompts/"+url.PathEscape(id), &s, nil, nil)
}

// RecordUse bumps the copy counter and stamps the use time
func (a *API) RecordUse(ctx context.Context, s Session, id string, at time.Time) (*domain.Prompt, error) {
	body := struct {
		LastUsedAt time.Time `json:"lastUsedAt"`
	}{LastUsedAt: at.UTC()}

	var out domain.Prompt
	if err := a.do(ctx, http.MethodPost, "/prompts/"+url.PathEscape(id)+"/copy", &s, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) CreateBatch(ctx context.Context, s Session, items []domain.BatchItem) (*BatchResponse, error) {
	body := struct {
		Prompts []domain.BatchItem `json:"prompts"`
	}{Prompts: items}
	if body.Prompts == nil {
		body.Prompts = []domain.BatchItem{}
	}

	var out BatchResponse
	if err := a.do(ctx, http.MethodPost, "/prompts/batch", &s, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckSession reports whether the server knows sessionID
func (a *API) CheckSession(ctx context.Context, sessionID string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	body := map[string]string{"sessionId": sessionID, "action": "check"}
	if err := a.do(ctx, http.MethodPost, "/session", nil, body, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// CreateSession registers sessionID with an empty prompt list
func (a *API) CreateSession(ctx context.Context, sessionID string) error {
	body := map[string]string{"sessionId": sessionID, "action": "create"}
	return a.do(ctx, http.MethodPost, "/session", nil, body, nil)
}

func (a *API) do(ctx context.Context, method, path string, s *Session, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: s.ID})
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{
		Status:  status,
		Message: fmt.Sprintf("HTTP error! status: %d", status),
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	}
	return apiErr
}
