package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/identity"
)

var (
	ErrNoSession      = errors.New("not logged in")
	ErrSessionInvalid = errors.New("session is no longer valid, log in again")
	ErrUnknownAccount = errors.New("no account for these credentials")
	ErrAccountExists  = errors.New("an account with these credentials already exists")
)

// State is what survives between invocations: the session id (the cookie
// value) and the username shown to the user
type State struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username,omitempty"`
}

// Manager owns the persisted login state
type Manager struct {
	api  *API
	path string

	mu    sync.Mutex
	state State
}

// DefaultStatePath is promptshelf/session.json under the user config dir
func DefaultStatePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "promptshelf", "session.json"), nil
}

// NewManager loads the state file at path if there is one
func NewManager(api *API, path string) (*Manager, error) {
	m := &Manager{api: api, path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("read session state: %w", err)
	}

	if err := json.Unmarshal(raw, &m.state); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("ignoring unreadable session state")
		m.state = State{}
	}
	return m, nil
}

// Signup derives the session id from the credentials and registers it.
// Existing ids are refused.
func (m *Manager) Signup(ctx context.Context, username, password string) (Session, error) {
	if err := identity.ValidateSignup(username, password); err != nil {
		return Session{}, err
	}
	sessionID := identity.Derive(username, password)

	exists, err := m.api.CheckSession(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if exists {
		return Session{}, ErrAccountExists
	}

	if err := m.api.CreateSession(ctx, sessionID); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return Session{}, ErrAccountExists
		}
		return Session{}, err
	}

	return m.save(State{SessionID: sessionID, Username: username})
}

// SignupAnonymous registers a random session id with no username attached
func (m *Manager) SignupAnonymous(ctx context.Context) (Session, error) {
	sessionID, err := identity.GenerateRandom()
	if err != nil {
		return Session{}, fmt.Errorf("generate session id: %w", err)
	}

	if err := m.api.CreateSession(ctx, sessionID); err != nil {
		return Session{}, err
	}
	return m.save(State{SessionID: sessionID})
}

// Login derives the session id and accepts it only if the server knows it
func (m *Manager) Login(ctx context.Context, username, password string) (Session, error) {
	if err := identity.ValidateCredentials(username, password); err != nil {
		return Session{}, err
	}
	sessionID := identity.Derive(username, password)

	exists, err := m.api.CheckSession(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if !exists {
		return Session{}, ErrUnknownAccount
	}

	return m.save(State{SessionID: sessionID, Username: username})
}

// Logout forgets the stored session
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clearLocked()
}

// Current returns the stored session without contacting the server
func (m *Manager) Current() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !identity.Valid(m.state.SessionID) {
		return Session{}, ErrNoSession
	}
	return Session{ID: m.state.SessionID, Username: m.state.Username}, nil
}

// Restore validates the stored session against the server. An unknown
// session is cleared; a server that cannot be reached keeps it.
func (m *Manager) Restore(ctx context.Context) (Session, error) {
	s, err := m.Current()
	if err != nil {
		return Session{}, err
	}

	exists, err := m.api.CheckSession(ctx, s.ID)
	if err != nil {
		log.Warn().Err(err).Msg("could not validate session, keeping it")
		return s, nil
	}
	if !exists {
		if err := m.Logout(); err != nil {
			return Session{}, err
		}
		return Session{}, ErrSessionInvalid
	}
	return s, nil
}

// sessionRequiredMessage is the 400 body the server sends for a missing or
// unusable session; other 400s are validation failures
const sessionRequiredMessage = "Session required"

// HandleError clears the stored credentials when a prompt call was refused
// because of the session. Any other error is returned untouched.
func (m *Manager) HandleError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) ||
		apiErr.Status != http.StatusBadRequest ||
		apiErr.Message != sessionRequiredMessage {
		return err
	}

	if clearErr := m.Logout(); clearErr != nil {
		log.Error().Err(clearErr).Msg("failed to clear session state")
	}
	return fmt.Errorf("%w: %w", ErrSessionInvalid, err)
}

func (m *Manager) save(state State) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return Session{}, fmt.Errorf("encode session state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		return Session{}, fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(m.path, raw, 0o600); err != nil {
		return Session{}, fmt.Errorf("write session state: %w", err)
	}

	m.state = state
	return Session{ID: state.SessionID, Username: state.Username}, nil
}

func (m *Manager) clearLocked() error {
	m.state = State{}
	if err := os.Remove(m.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session state: %w", err)
	}
	return nil
}
