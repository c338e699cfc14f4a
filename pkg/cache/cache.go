// Package cache holds TTL caches for Kubernetes conversion results.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheNotFound = errors.New("cache entry not found")
	ErrCacheExpired  = errors.New("cache entry expired")
)

// Cache stores JSON-encodable values with a time to live
type Cache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
	Close() error
}
