package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrLockTaken   = errors.New("lock already taken")
)

// CacheService is the shared key/value store behind user lookups, refresh token revocation
// and the signup lock. Values are stored JSON encoded.
type CacheService interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	// Get decodes the value under key into dest. A missing key is ErrKeyNotFound.
	Get(ctx context.Context, key string, dest any) error

	// GetWithFallback reads key into dest, or runs fallback and stores its result
	GetWithFallback(ctx context.Context, key string, dest any, fallback func() (any, error), expiration time.Duration) error

	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Lock takes a lock that expires after ttl. ErrLockTaken when someone else holds it.
	// The returned func releases it and is safe to call more than once.
	Lock(ctx context.Context, name string, ttl time.Duration) (func(), error)

	Close() error
	HealthCheck(ctx context.Context) error
}
