// Package kv is the key/value store shared by rate limiting, response caching
// and OTP codes. Redis backs it in multi-instance deployments; a process-local
// cache backs it otherwise.
package kv

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	// Get returns ErrNotFound for a missing or expired key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Incr increments an integer counter and applies ttl when it is created.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// DeletePattern removes every key matching a glob pattern such as "complaints:*".
	DeletePattern(ctx context.Context, pattern string) (int, error)
	Close() error
	Name() string
}
