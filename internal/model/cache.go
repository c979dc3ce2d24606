package model

import (
	"context"
	"time"
)

// Cache is an optional key/value store with TTL. All cached values are
// derived, recomputable data: callers must treat any error or miss as a
// signal to recompute from the authoritative store, never as a failure.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Ping(ctx context.Context) error
}
