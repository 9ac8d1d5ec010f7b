// Package storage provides the object store behind uploaded 3D assets
// and their derived variants. The MinIO-backed implementation is used
// in production; an in-memory one backs tests.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyExists is returned by a no-overwrite Put when the key is
	// already present in the bucket.
	ErrKeyExists = errors.New("storage: key already exists")

	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("storage: key not found")
)

// ObjectStore abstracts the blob service holding assets. All methods
// honor the context for cancellation and deadlines.
type ObjectStore interface {
	// Put stores data under key. With overwrite=false an existing key
	// yields ErrKeyExists and the object is left untouched.
	Put(ctx context.Context, key string, data []byte, contentType string, overwrite bool) error

	// Get returns the full object bytes, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Stat probes for existence without fetching the payload.
	Stat(ctx context.Context, key string) error

	// List returns the keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, objectKeys ...string) error

	// SignedURL issues a time-limited read URL for an existing key.
	// A missing key yields ErrNotFound.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// PublicURL returns the unauthenticated URL for a key. It does not
	// check existence.
	PublicURL(key string) string
}
