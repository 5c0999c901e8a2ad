// Package blobstore provides namespaced key-value storage of opaque values.
// Backends give atomic get/set per key and nothing across keys.
package blobstore

import (
	"context"
	"errors"
)

// DefaultNamespace is the store shared by every session's prompt list.
const DefaultNamespace = "ai-prompts"

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("blob not found")

// Store is a namespaced blob store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Keys lists the keys in the namespace that start with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
