// Package metadata stores small string values under string keys in the local
// SQLite database. The session layer keeps its credentials here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	// Delete removes the keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// List returns every stored pair.
	List(ctx context.Context) (map[string]string, error)
}

var _ Repository = (*SQLiteRepository)(nil)
