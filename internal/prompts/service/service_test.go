package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptshelf/promptshelf-backend/internal/blobstore"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/domain"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/repository"
)

// fakeClock hands out strictly increasing timestamps
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func setupServices(t *testing.T) (*PromptService, *SessionService, *repository.ListRepository, *miniredis.Miniredis) {
	client, mr := setupTestRedis(t)
	repo := repository.NewListRepository(blobstore.NewRedisStore(client, blobstore.DefaultNamespace))
	clock := newFakeClock()

	seq := 0
	var mu sync.Mutex
	nextID := func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("p%03d", seq)
	}

	return NewPromptService(repo, WithClock(clock.Now), WithIDGenerator(nextID)), NewSessionService(repo), repo, mr
}

func TestSessionService_CreateAndExists(t *testing.T) {
	_, sessions, _, _ := setupServices(t)
	ctx := context.Background()

	exists, err := sessions.Exists(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, sessions.Create(ctx, "sid"))

	exists, err = sessions.Exists(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, exists)

	err = sessions.Create(ctx, "sid")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	exists, err = sessions.Exists(ctx, "sid")
	require.NoError(t, err)
	assert.True(t, exists, "session stays after a rejected signup")
}

func TestSessionService_RequiresSessionID(t *testing.T) {
	_, sessions, _, _ := setupServices(t)

	_, err := sessions.Exists(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = sessions.Create(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestSessionService_ExistsSwallowsStoreErrors(t *testing.T) {
	_, sessions, _, mr := setupServices(t)
	mr.SetError("down")
	defer mr.SetError("")

	exists, err := sessions.Exists(context.Background(), "sid")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestSessionService_CreateSurfacesSaveFailure(t *testing.T) {
	_, sessions, _, mr := setupServices(t)
	mr.SetError("down")
	defer mr.SetError("")

	// existence check fails safe to false, then the save fails loudly
	err := sessions.Create(context.Background(), "sid")
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
}

func TestPromptService_CreateThenList(t *testing.T) {
	prompts, _, _, _ := setupServices(t)
	ctx := context.Background()

	created, err := prompts.Create(ctx, "sid", domain.PromptInput{
		Title:   "  Greeting ",
		Content: "Hello {name}\n",
		Tags:    []string{"en", " ", "casual ", ""},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Greeting", created.Title)
	assert.Equal(t, "Hello {name}", created.Content)
	assert.Equal(t, []string{"en", "casual"}, created.Tags)
	assert.Equal(t, "sid", created.SessionID)
	assert.Equal(t, 0, created.CopiedCount)
	assert.Nil(t, created.LastUsedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	all, err := prompts.ListAll(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, *created, all[0])
}

func TestPromptService_CreateKeepsDuplicateTags(t *testing.T) {
	prompts, _, _, _ := setupServices(t)

	created, err := prompts.Create(context.Background(), "sid", domain.PromptInput{
		Title: "t", Content: "c", Tags: []string{"a", "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a"}, created.Tags)
}

func TestPromptService_CreateValidation(t *testing.T) {
	prompts, _, repo, _ := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   domain.PromptInput
	}{
		{"empty title", domain.PromptInput{Title: "", Content: "c"}},
		{"blank title", domain.PromptInput{Title: "   ", Content: "c"}},
		{"blank content", domain.PromptInput{Title: "t", Content: "\t\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := prompts.Create(ctx, "sid", tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	exists, err := repo.Exists(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, exists, "validation failures must not touch the store")
}

func TestPromptService_RequiresSession(t *testing.T) {
	prompts, _, _, mr := setupServices(t)
	ctx := context.Background()
	mr.SetError("store must not be reached")
	defer mr.SetError("")

	_, err := prompts.ListAll(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = prompts.Create(ctx, "", domain.PromptInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = prompts.CreateBatch(ctx, "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = prompts.Update(ctx, "", "id", domain.PromptInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = prompts.Delete(ctx, "", "id")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = prompts.RecordUse(ctx, "", "id", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPromptService_UpdatePreservesIdentityAndUsage(t *testing.T) {
	prompts, _, _, _ := setupServices(t)
	ctx := context.Background()

	created, err := prompts.Create(ctx, "sid", domain.PromptInput{Title: "t", Content: "c", Tags: []string{"x"}})
	require.NoError(t, err)
	used, err := prompts.RecordUse(ctx, "sid", created.ID, nil)
	require.NoError(t, err)

	updated, err := prompts.Update(ctx, "sid", created.ID, domain.PromptInput{
		Title: " New ", Content: " body ", Tags: []string{"y", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.SessionID, updated.SessionID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, used.CopiedCount, updated.CopiedCount)
	assert.Equal(t, used.LastUsedAt, updated.LastUsedAt)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "body", updated.Content)
	assert.Equal(t, []string{"y"}, updated.Tags)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestPromptService_UpdateErrors(t *testing.T) {
	prompts, _, _, _ := setupServices(t)
	ctx := context.Background()

	created, err := prompts.Create(ctx, "sid", domain.PromptInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	_, err = prompts.Update(ctx, "sid", "missing", domain.PromptInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = prompts.Update(ctx, "sid", created.ID, domain.PromptInput{Title: "", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = prompts.Update(ctx, "sid", "", domain.PromptInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = prompts.Update(ctx, "other-session", created.ID, domain.PromptInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrNotFound, "sessions are isolated")
}

func TestPromptService_DeleteRemovesOnlyTarget(t *testing.T) {
	prompts, _, _, mr := setupServices(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		p, err := prompts.Create(ctx, "sid", domain.PromptInput{
			Title: fmt.Sprintf("t%d", i), Content: "c", Tags: []string{"k"},
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	before, err := prompts.ListAll(ctx, "sid")
	require.NoError(t, err)

	require.NoError(t, prompts.Delete(ctx, "sid", ids[1]))

	after, err := prompts.ListAll(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[1])

	rawBefore, err := mr.Get("ai-prompts:prompt_sid")
	require.NoError(t, err)

	err = prompts.Delete(ctx, "sid", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rawAfter, err := mr.Get("ai-prompts:prompt_sid")
	require.NoError(t, err)
	assert.Equal(t, rawBefore, rawAfter, "failed delete leaves the stored list untouched")
}

func TestPromptService_RecordUseCounts(t *testing.T) {
	prompts, _, _, _ := setupServices(t)
	ctx := context.Background()

	created, err := prompts.Create(ctx, "sid", domain.PromptInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	const n = 5
	var last *domain.Prompt
	for i := 0; i < n; i++ {
		last, err = prompts.RecordUse(ctx, "sid", created.ID, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, n, last.CopiedCount)
	require.NotNil(t, last.LastUsedAt)

	stored, err := prompts.ListAll(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, n, stored[0].CopiedCount)
	assert.True(t, stored[0].LastUsedAt.Equal(*last.LastUsedAt))
}

func TestPromptService_RecordUseWithTimestamp(t *testing.T) {
	prompts, _, _, _ := setupServices(t)
	ctx := context.Background()

	created, err := prompts.Create(ctx, "sid", domain.PromptInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	when := time.Date(2030, 1, 2, 3, 4, 5, 0, time.FixedZone("KST", 9*3600))
	used, err := prompts.RecordUse(ctx, "sid", created.ID, &when)
	require.NoError(t, err)

	require.NotNil(t, used.LastUsedAt)
	assert.True(t, used.LastUsedAt.Equal(when))
	assert.Equal(t, time.UTC, used.LastUsedAt.Location())

	_, err = prompts.RecordUse(ctx, "sid", "missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPromptService_CreateBatch(t *testing.T) {
	prompts, _, _, _ := setupServices(t)
	ctx := context.Background()

	_, err := prompts.Create(ctx, "sid", domain.PromptInput{Title: "existing", Content: "c"})
	require.NoError(t, err)

	items := []json.RawMessage{
		json.RawMessage(`{"title":"one","content":"first","tags":["a"]}`),
		json.RawMessage(`{"title":"  ","content":"no title"}`),
		json.RawMessage(`{"title":"two","content":"second","copiedCount":7,"lastUsedAt":"2024-05-06T07:08:09.000Z"}`),
	}

	result, err := prompts.CreateBatch(ctx, "sid", items)
	require.NoError(t, err)

	require.Len(t, result.Added, 2)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "one", result.Added[0].Title)
	assert.Equal(t, "two", result.Added[1].Title)
	assert.Equal(t, 0, result.Added[0].CopiedCount)
	assert.Equal(t, 7, result.Added[1].CopiedCount)
	require.NotNil(t, result.Added[1].LastUsedAt)
	assert.Equal(t, 2024, result.Added[1].LastUsedAt.Year())
	assert.Equal(t, reasonTitleContentRequired, result.Rejected[0].Reason)
	assert.JSONEq(t, `{"title":"  ","content":"no title"}`, string(result.Rejected[0].Input.(json.RawMessage)))

	all, err := prompts.ListAll(ctx, "sid")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "existing", all[0].Title)
	assert.Equal(t, "one", all[1].Title)
	assert.Equal(t, "two", all[2].Title)
}

func TestPromptService_CreateBatchIsolatesUndecodableItems(t *testing.T) {
	prompts, _, _, _ := setupServices(t)

	items := []json.RawMessage{
		json.RawMessage(`42`),
		json.RawMessage(`{"title":"ok","content":"fine"}`),
		json.RawMessage(`{"title":"bad","content":"x","copiedCount":"many"}`),
		json.RawMessage(`null`),
	}

	result, err := prompts.CreateBatch(context.Background(), "sid", items)
	require.NoError(t, err)
	assert.Len(t, result.Added, 1)
	assert.Len(t, result.Rejected, 3)
}

func TestPromptService_CreateBatchKeepsItemsWithUnusableLastUsedAt(t *testing.T) {
	prompts, _, _, _ := setupServices(t)

	items := []json.RawMessage{
		json.RawMessage(`{"title":"blank","content":"x","lastUsedAt":""}`),
		json.RawMessage(`{"title":"words","content":"y","lastUsedAt":"yesterday","copiedCount":2}`),
	}

	result, err := prompts.CreateBatch(context.Background(), "sid", items)
	require.NoError(t, err)
	assert.Empty(t, result.Rejected)
	require.Len(t, result.Added, 2)
	assert.Nil(t, result.Added[0].LastUsedAt)
	assert.Nil(t, result.Added[1].LastUsedAt)
	assert.Equal(t, 2, result.Added[1].CopiedCount)
}

func TestPromptService_CreateBatchSavesOnce(t *testing.T) {
	prompts, _, _, mr := setupServices(t)
	ctx := context.Background()

	items := []json.RawMessage{
		json.RawMessage(`{"title":"a","content":"a"}`),
		json.RawMessage(`{"title":"b","content":"b"}`),
	}

	mr.SetError("")
	_, err := prompts.CreateBatch(ctx, "sid", items)
	require.NoError(t, err)

	total := mr.CommandCount()
	_, err = prompts.CreateBatch(ctx, "sid", items)
	require.NoError(t, err)

	// one GET and one SET per batch, regardless of the number of items
	assert.Equal(t, 2, mr.CommandCount()-total)
}

func TestPromptService_StoreFailureSurfaces(t *testing.T) {
	prompts, _, _, mr := setupServices(t)
	mr.SetError("down")
	defer mr.SetError("")

	_, err := prompts.Create(context.Background(), "sid", domain.PromptInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, domain.ErrStoreFailure)
}

func TestPromptService_EndToEnd(t *testing.T) {
	prompts, _, _, _ := setupServices(t)
	ctx := context.Background()

	created, err := prompts.Create(ctx, "sid", domain.PromptInput{
		Title: "Greeting", Content: "Hello {name}", Tags: []string{"en", "casual"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Greeting", created.Title)
	assert.Equal(t, []string{"en", "casual"}, created.Tags)

	all, err := prompts.ListAll(ctx, "sid")
	require.NoError(t, err)
	assert.Contains(t, all, *created)

	used, err := prompts.RecordUse(ctx, "sid", created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, used.CopiedCount)

	require.NoError(t, prompts.Delete(ctx, "sid", created.ID))

	all, err = prompts.ListAll(ctx, "sid")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestNewPromptService_DefaultIDsAreUnique(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := repository.NewListRepository(blobstore.NewRedisStore(client, ""))
	prompts := NewPromptService(repo)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		p, err := prompts.Create(ctx, "sid", domain.PromptInput{Title: "t", Content: "c"})
		require.NoError(t, err)
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}
