package kv

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps keys in process memory. Limits enforced through it are
// per instance, not global.
type MemoryStore struct {
	cache *gocache.Cache
	mu    sync.Mutex // serializes read-modify-write in Incr and Expire
}

func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (s *MemoryStore) Name() string { return "memory" }

func expiration(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.NoExpiration
	}
	return ttl
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	switch val := v.(type) {
	case []byte:
		out := make([]byte, len(val))
		copy(out, val)
		return out, nil
	case int64:
		return []byte(strconv.FormatInt(val, 10)), nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.cache.Set(key, stored, expiration(ttl))
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Get(key); !ok {
		s.cache.Set(key, int64(1), expiration(ttl))
		return 1, nil
	}
	return s.cache.IncrementInt64(key, 1)
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(key)
	if !ok {
		return nil
	}
	s.cache.Set(key, v, expiration(ttl))
	return nil
}

func (s *MemoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		s.cache.Delete(k)
	}
	return nil
}

func (s *MemoryStore) DeletePattern(_ context.Context, pattern string) (int, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return 0, err
	}
	deleted := 0
	for key := range s.cache.Items() {
		if ok, _ := path.Match(pattern, key); ok {
			s.cache.Delete(key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}
