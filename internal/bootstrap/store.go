package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/promptshelf/promptshelf-backend/config"
	"github.com/promptshelf/promptshelf-backend/internal/blobstore"
)

type StoreOptions struct {
	Backend   string
	Namespace string
	ConnectTO time.Duration
	PingTO    time.Duration
}

// OpenStore connects the blob store backend named in opt, using the
// connection settings from cfg, and verifies it answers a ping.
func OpenStore(ctx context.Context, cfg *config.Config, opt StoreOptions) (blobstore.Store, error) {
	if opt.Namespace == "" {
		return nil, fmt.Errorf("store namespace is not set")
	}
	if opt.ConnectTO == 0 {
		opt.ConnectTO = 5 * time.Second
	}
	if opt.PingTO == 0 {
		opt.PingTO = 2 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, opt.ConnectTO)
	defer cancel()

	var (
		store blobstore.Store
		err   error
	)
	switch opt.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = blobstore.NewRedisStore(client, opt.Namespace)
	case config.BackendS3:
		store, err = blobstore.NewS3Store(cctx, blobstore.S3Options{
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			Endpoint:     cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UsePathStyle: cfg.S3.UsePathStyle,
		}, opt.Namespace)
	case config.BackendSQLite:
		store, err = blobstore.OpenSQLStore(cctx, blobstore.DialectSQLite, cfg.SQL.SQLitePath, opt.Namespace)
	case config.BackendPostgres:
		store, err = blobstore.OpenSQLStore(cctx, blobstore.DialectPostgres, cfg.SQL.PostgresDSN, opt.Namespace)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opt.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("store connect (%s): %w", opt.Backend, err)
	}

	pctx, pcancel := context.WithTimeout(ctx, opt.PingTO)
	defer pcancel()

	if err := store.Ping(pctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("store ping (%s): %w", opt.Backend, err)
	}

	return store, nil
}
