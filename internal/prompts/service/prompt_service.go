package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid/v2"

	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/identity"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/repository"
)

const reasonTitleContentRequired = "Title and content are required"

// PromptService implements the prompt collection operations. Every mutation
// is one load, an in-memory change and one save of the whole list.
type PromptService struct {
	listRepo *repository.ListRepository
	now      func() time.Time
	newID    func() string
}

// Option configures a PromptService
type Option func(*PromptService)

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *PromptService) {
		s.now = now
	}
}

// WithIDGenerator replaces the prompt id source
func WithIDGenerator(newID func() string) Option {
	return func(s *PromptService) {
		s.newID = newID
	}
}

// NewPromptService creates a new PromptService
func NewPromptService(listRepo *repository.ListRepository, opts ...Option) *PromptService {
	s := &PromptService{
		listRepo: listRepo,
		now:      time.Now,
		newID:    func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListAll returns the session's prompts in stored order
func (s *PromptService) ListAll(ctx context.Context, sessionID string) ([]domain.Prompt, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	return s.listRepo.Load(ctx, sessionID)
}

// Create appends a new prompt to the session's list
func (s *PromptService) Create(ctx context.Context, sessionID string, in domain.PromptInput) (*domain.Prompt, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	title, content, ok := normalizeText(in.Title, in.Content)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, reasonTitleContentRequired)
	}

	prompts, err := s.listRepo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	prompt := s.newPrompt(sessionID, title, content, in.Tags)
	prompts = append(prompts, prompt)

	if err := s.listRepo.Save(ctx, sessionID, prompts); err != nil {
		return nil, err
	}
	return &prompt, nil
}

// CreateBatch validates each raw item independently and appends the valid
// ones in input order with a single save. Invalid items are returned as
// rejections and never abort their siblings.
func (s *PromptService) CreateBatch(ctx context.Context, sessionID string, items []json.RawMessage) (*domain.BatchResult, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}

	prompts, err := s.listRepo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	result := &domain.BatchResult{
		Added:    []domain.Prompt{},
		Rejected: []domain.Rejection{},
	}

	for _, raw := range items {
		var item domain.BatchItem
		if err := json.Unmarshal(raw, &item); err != nil {
			result.Rejected = append(result.Rejected, domain.Rejection{Reason: err.Error(), Input: raw})
			continue
		}

		title, content, ok := normalizeText(item.Title, item.Content)
		if !ok {
			result.Rejected = append(result.Rejected, domain.Rejection{Reason: reasonTitleContentRequired, Input: raw})
			continue
		}

		prompt := s.newPrompt(sessionID, title, content, item.Tags)
		if item.CopiedCount > 0 {
			prompt.CopiedCount = item.CopiedCount
		}
		prompt.LastUsedAt = item.LastUsedAt
		result.Added = append(result.Added, prompt)
	}

	prompts = append(prompts, result.Added...)
	if err := s.listRepo.Save(ctx, sessionID, prompts); err != nil {
		return nil, err
	}

	return result, nil
}

// Update replaces the editable fields of a prompt. Identity, ownership,
// creation time and usage statistics are kept.
func (s *PromptService) Update(ctx context.Context, sessionID, id string, in domain.PromptInput) (*domain.Prompt, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := requirePromptID(id); err != nil {
		return nil, err
	}
	title, content, ok := normalizeText(in.Title, in.Content)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, reasonTitleContentRequired)
	}

	prompts, err := s.listRepo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(prompts, id)
	if idx == -1 {
		return nil, domain.ErrNotFound
	}

	updated := prompts[idx]
	updated.Title = title
	updated.Content = content
	updated.Tags = cleanTags(in.Tags)
	updated.UpdatedAt = s.timestamp()
	prompts[idx] = updated

	if err := s.listRepo.Save(ctx, sessionID, prompts); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a prompt from the session's list
func (s *PromptService) Delete(ctx context.Context, sessionID, id string) error {
	if err := requireSession(sessionID); err != nil {
		return err
	}
	if err := requirePromptID(id); err != nil {
		return err
	}

	prompts, err := s.listRepo.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	idx := indexOf(prompts, id)
	if idx == -1 {
		return domain.ErrNotFound
	}

	prompts = append(prompts[:idx], prompts[idx+1:]...)
	return s.listRepo.Save(ctx, sessionID, prompts)
}

// RecordUse counts one copy of a prompt and stamps when it happened. A nil
// lastUsedAt means now.
func (s *PromptService) RecordUse(ctx context.Context, sessionID, id string, lastUsedAt *time.Time) (*domain.Prompt, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if err := requirePromptID(id); err != nil {
		return nil, err
	}

	prompts, err := s.listRepo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := indexOf(prompts, id)
	if idx == -1 {
		return nil, domain.ErrNotFound
	}

	usedAt := s.timestamp()
	if lastUsedAt != nil {
		usedAt = lastUsedAt.UTC()
	}

	updated := prompts[idx]
	if updated.CopiedCount < 0 {
		updated.CopiedCount = 0
	}
	updated.CopiedCount++
	updated.LastUsedAt = &usedAt
	prompts[idx] = updated

	if err := s.listRepo.Save(ctx, sessionID, prompts); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *PromptService) newPrompt(sessionID, title, content string, tags []string) domain.Prompt {
	now := s.timestamp()
	return domain.Prompt{
		ID:          s.newID(),
		Title:       title,
		Content:     content,
		Tags:        cleanTags(tags),
		SessionID:   sessionID,
		CreatedAt:   now,
		UpdatedAt:   now,
		CopiedCount: 0,
		LastUsedAt:  nil,
	}
}

func (s *PromptService) timestamp() time.Time {
	return s.now().UTC()
}

func requireSession(sessionID string) error {
	if !identity.Valid(sessionID) {
		return fmt.Errorf("%w: session ID is required", domain.ErrInvalidArgument)
	}
	return nil
}

func requirePromptID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: prompt ID is required", domain.ErrInvalidArgument)
	}
	return nil
}

func normalizeText(title, content string) (string, string, bool) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	return title, content, title != "" && content != ""
}

// cleanTags drops blank tags and trims the rest. Duplicates are kept.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func indexOf(prompts []domain.Prompt, id string) int {
	for i := range prompts {
		if prompts[i].ID == id {
			return i
		}
	}
	return -1
}
