package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/promptshelf/promptshelf-backend/internal/blobstore/migrations"
)

// Dialect selects the SQL flavour of a SQLStore
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type sqlQueries struct {
	get    string
	upsert string
	keys   string
}

var queries = map[Dialect]sqlQueries{
	DialectSQLite: {
		get: `SELECT value FROM blobs WHERE namespace = ? AND key = ?`,
		upsert: `INSERT INTO blobs (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		keys: `SELECT key FROM blobs WHERE namespace = ? ORDER BY key`,
	},
	DialectPostgres: {
		get: `SELECT value FROM blobs WHERE namespace = $1 AND key = $2`,
		upsert: `INSERT INTO blobs (namespace, key, value, updated_at) VALUES ($1, $2, $3, $4)
			ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		keys: `SELECT key FROM blobs WHERE namespace = $1 ORDER BY key`,
	},
}

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
	return goose.UpContext(ctx, db, dir)
}

// SQLStore keeps blobs in a single "blobs" table keyed by (namespace, key)
type SQLStore struct {
	db        *sql.DB
	dialect   Dialect
	namespace string
	q         sqlQueries
}

// OpenSQLStore opens the database, applies the embedded migrations and
// returns a store bound to namespace. For sqlite, dsn is a file path.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn, namespace string) (*SQLStore, error) {
	q, ok := queries[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported sql dialect %q", dialect)
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn is not set", dialect)
	}

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		db, err = sql.Open("sqlite", dsn+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	case DialectPostgres:
		db, err = sql.Open("pgx", dsn)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &SQLStore{db: db, dialect: dialect, namespace: namespace, q: q}, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	gooseDialect := "sqlite3"
	if dialect == DialectPostgres {
		gooseDialect = "pgx"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	return gooseUp(ctx, db, string(dialect))
}

// Get reads the value for key
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.q.get, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sql get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key
func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	var updatedAt any = time.Now().UTC()
	if s.dialect == DialectSQLite {
		updatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if _, err := s.db.ExecContext(ctx, s.q.upsert, s.namespace, key, value, updatedAt); err != nil {
		return fmt.Errorf("sql set %s: %w", key, err)
	}
	return nil
}

// Keys lists keys in the namespace starting with prefix. The prefix is
// matched in Go because "_" is a LIKE wildcard.
func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.q.keys, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("sql keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("sql keys scan: %w", err)
		}
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, rows.Err()
}

// Ping checks the connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
