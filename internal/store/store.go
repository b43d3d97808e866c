// Package store persists pipeline artifacts. The core produces in-memory
// structures only; the caller decides what to keep, through this interface.
package store

import "context"

// Store is a flat artifact store keyed by relative paths.
type Store interface {
	Save(ctx context.Context, path string, data []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, pattern string) ([]string, error)
	Exists(ctx context.Context, path string) bool
	Delete(ctx context.Context, path string) error
}
