package service

import (
	"context"
	"fmt"

	"github.com/promptshelf/promptshelf-backend/internal/logging"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/identity"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/repository"
)

// SessionService answers whether a session exists and signs new ones up
type SessionService struct {
	listRepo *repository.ListRepository
}

// NewSessionService creates a new SessionService
func NewSessionService(listRepo *repository.ListRepository) *SessionService {
	return &SessionService{
		listRepo: listRepo,
	}
}

// Exists reports whether a list has been created for the session. Store
// errors are logged and reported as "does not exist" so login flows fail
// closed instead of erroring.
func (s *SessionService) Exists(ctx context.Context, sessionID string) (bool, error) {
	if !identity.Valid(sessionID) {
		return false, fmt.Errorf("%w: session ID is required", domain.ErrInvalidArgument)
	}

	exists, err := s.listRepo.Exists(ctx, sessionID)
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Str("operation", "session.exists").Msg("error checking session existence")
		return false, nil
	}
	return exists, nil
}

// Create brings a session into existence with an empty prompt list
func (s *SessionService) Create(ctx context.Context, sessionID string) error {
	exists, err := s.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyExists
	}

	if err := s.listRepo.Save(ctx, sessionID, []domain.Prompt{}); err != nil {
		return err
	}

	logging.FromContext(ctx).Info().Str("operation", "session.create").Msg("session created")
	return nil
}
