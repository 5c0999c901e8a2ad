package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/promptshelf/promptshelf-backend/internal/blobstore"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/identity"
)

const sessionKeyPrefix = "prompt_" // Key for a session's prompt list: prompt_{session_id}

// ListRepository reads and writes a session's whole prompt list as one blob.
// It is the only writer of persisted lists. There is no versioning: the last
// Save wins.
type ListRepository struct {
	store blobstore.Store
}

// NewListRepository creates a new ListRepository
func NewListRepository(store blobstore.Store) *ListRepository {
	return &ListRepository{
		store: store,
	}
}

// Load returns the session's prompts. A session that has never been written
// yields an empty list.
func (r *ListRepository) Load(ctx context.Context, sessionID string) ([]domain.Prompt, error) {
	if !identity.Valid(sessionID) {
		return nil, fmt.Errorf("%w: session ID is required", domain.ErrInvalidArgument)
	}

	data, err := r.store.Get(ctx, SessionKey(sessionID))
	if errors.Is(err, blobstore.ErrNotFound) {
		return []domain.Prompt{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load prompts: %w", domain.ErrStoreFailure, err)
	}

	var prompts []domain.Prompt
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal prompts: %w", domain.ErrStoreFailure, err)
	}
	if prompts == nil {
		prompts = []domain.Prompt{}
	}
	for i := range prompts {
		if prompts[i].Tags == nil {
			prompts[i].Tags = []string{}
		}
	}

	return prompts, nil
}

// Save overwrites the session's list
func (r *ListRepository) Save(ctx context.Context, sessionID string, prompts []domain.Prompt) error {
	if !identity.Valid(sessionID) {
		return fmt.Errorf("%w: session ID is required", domain.ErrInvalidArgument)
	}
	if prompts == nil {
		prompts = []domain.Prompt{}
	}

	data, err := json.Marshal(prompts)
	if err != nil {
		return fmt.Errorf("failed to marshal prompts: %w", err)
	}

	if err := r.store.Set(ctx, SessionKey(sessionID), data); err != nil {
		return fmt.Errorf("%w: failed to save prompts: %w", domain.ErrStoreFailure, err)
	}

	return nil
}

// Exists reports whether a list is stored for the session, including an
// empty one
func (r *ListRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	if !identity.Valid(sessionID) {
		return false, fmt.Errorf("%w: session ID is required", domain.ErrInvalidArgument)
	}

	_, err := r.store.Get(ctx, SessionKey(sessionID))
	if errors.Is(err, blobstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to check session: %w", domain.ErrStoreFailure, err)
	}
	return true, nil
}

// SessionKey maps a session id to its blob key
func SessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// SessionKeyPrefix is the prefix shared by every list key
func SessionKeyPrefix() string {
	return sessionKeyPrefix
}
