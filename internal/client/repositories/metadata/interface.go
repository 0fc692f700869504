// Package metadata stores small key/value records of the CLI state
// database: the persisted session token, the user it belongs to and the
// backend it was issued by.
package metadata

import (
	"context"
)

// Repository is a key/value table. Get returns (nil, nil) for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
