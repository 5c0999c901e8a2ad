package backup

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptshelf/promptshelf-backend/internal/blobstore"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/repository"
)

func setupSource(t *testing.T) (*miniredis.Miniredis, *blobstore.RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, blobstore.NewRedisStore(client, blobstore.DefaultNamespace)
}

func setupTarget(t *testing.T) *blobstore.SQLStore {
	t.Helper()
	store, err := blobstore.OpenSQLStore(context.Background(), blobstore.DialectSQLite,
		filepath.Join(t.TempDir(), "backup.db"), "ai-prompts-backup")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestJob_CopiesSessionLists(t *testing.T) {
	ctx := context.Background()
	_, source := setupSource(t)
	target := setupTarget(t)

	require.NoError(t, source.Set(ctx, repository.SessionKey("alice"), []byte(`[{"id":"1"}]`)))
	require.NoError(t, source.Set(ctx, repository.SessionKey("bob"), []byte(`[]`)))
	require.NoError(t, source.Set(ctx, "unrelated", []byte(`x`)))

	res, err := NewJob(source, target).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Copied: 2}, res)

	got, err := target.Get(ctx, repository.SessionKey("alice"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"1"}]`, string(got))

	_, err = target.Get(ctx, "unrelated")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestJob_OverwritesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	_, source := setupSource(t)
	target := setupTarget(t)
	job := NewJob(source, target)

	key := repository.SessionKey("alice")
	require.NoError(t, source.Set(ctx, key, []byte(`[]`)))
	_, err := job.Run(ctx)
	require.NoError(t, err)

	require.NoError(t, source.Set(ctx, key, []byte(`[{"id":"2"}]`)))
	_, err = job.Run(ctx)
	require.NoError(t, err)

	got, err := target.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"2"}]`, string(got))
}

type failingStore struct {
	blobstore.Store
	failKey string
}

func (s failingStore) Set(ctx context.Context, key string, value []byte) error {
	if key == s.failKey {
		return errors.New("disk full")
	}
	return s.Store.Set(ctx, key, value)
}

func TestJob_CountsFailuresAndContinues(t *testing.T) {
	ctx := context.Background()
	_, source := setupSource(t)
	target := setupTarget(t)

	for _, sid := range []string{"a", "b", "c"} {
		require.NoError(t, source.Set(ctx, repository.SessionKey(sid), []byte(`[]`)))
	}

	job := NewJob(source, failingStore{Store: target, failKey: repository.SessionKey("b")})
	res, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Copied: 2, Failed: 1}, res)

	_, err = target.Get(ctx, repository.SessionKey("c"))
	assert.NoError(t, err)
}

func TestJob_SourceUnavailable(t *testing.T) {
	mr, source := setupSource(t)
	mr.Close()

	_, err := NewJob(source, setupTarget(t)).Run(context.Background())
	assert.ErrorContains(t, err, "failed to list source keys")
}

type countingRunner struct{ calls atomic.Int32 }

func (r *countingRunner) Run(context.Context) (Result, error) {
	r.calls.Add(1)
	return Result{}, nil
}

func TestScheduler(t *testing.T) {
	_, err := NewScheduler("not a schedule", &countingRunner{})
	assert.ErrorContains(t, err, "invalid backup schedule")

	runner := &countingRunner{}
	s, err := NewScheduler("* * * * * *", runner)
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return runner.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}
