package cache

import (
	"context"
	"time"
)

// Cache is a JSON blob cache. The chat tools use it to avoid re-querying
// live listings on every turn; a miss is never an error.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
