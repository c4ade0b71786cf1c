// Package metadata is the key/value table of the local vault. The session
// persister stores each session field under its own key and writes them in
// one transaction.
package metadata

import (
	"context"
)

// Repository reads and writes vault metadata. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
