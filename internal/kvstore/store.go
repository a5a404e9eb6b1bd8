package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key was never set or has expired.
var ErrNotFound = errors.New("key not found")

// Store is the subset of Redis commands the cache layer relies on.
// Implementations must make Incr, RPush and RPushPair atomic per key.
type Store interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// SetEx sets key with a ttl in whole seconds. Sub-second ttls become one
	// second and fractions are dropped, as go-redis sends them.
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	RPush(ctx context.Context, key string, value []byte) error
	// RPushPair appends first to firstKey and second to secondKey as one
	// atomic step.
	RPushPair(ctx context.Context, firstKey string, first []byte, secondKey string, second []byte) error
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
	FlushDB(ctx context.Context) error
}
