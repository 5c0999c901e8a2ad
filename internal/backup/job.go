// Package backup snapshots every session's prompt list from the primary
// store into a second store.
package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/promptshelf/promptshelf-backend/internal/blobstore"
	"github.com/promptshelf/promptshelf-backend/internal/prompts/repository"
)

// Result counts the keys of one snapshot run
type Result struct {
	Copied int
	Failed int
}

// Job copies prompt list blobs from source to target
type Job struct {
	source blobstore.Store
	target blobstore.Store
	prefix string
}

func NewJob(source, target blobstore.Store) *Job {
	return &Job{
		source: source,
		target: target,
		prefix: repository.SessionKeyPrefix(),
	}
}

// Run copies every session list once. A failing key is logged and counted
// and the run goes on with the rest.
func (j *Job) Run(ctx context.Context) (Result, error) {
	var res Result
	start := time.Now()

	keys, err := j.source.Keys(ctx, j.prefix)
	if err != nil {
		return res, fmt.Errorf("failed to list source keys: %w", err)
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		if err := j.copyKey(ctx, key); err != nil {
			res.Failed++
			log.Error().Err(err).Str("key", key).Msg("backup: copy failed")
			continue
		}
		res.Copied++
	}

	log.Info().
		Int("copied", res.Copied).
		Int("failed", res.Failed).
		Dur("took", time.Since(start)).
		Msg("backup: snapshot finished")

	return res, nil
}

func (j *Job) copyKey(ctx context.Context, key string) error {
	value, err := j.source.Get(ctx, key)
	if errors.Is(err, blobstore.ErrNotFound) {
		// removed between listing and reading
		return nil
	}
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	if err := j.target.Set(ctx, key, value); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
