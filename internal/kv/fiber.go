package kv

import (
	"context"
	"errors"
	"time"
)

const storageTimeout = 2 * time.Second

// FiberStorage adapts a Store to fiber.Storage so fiber's limiter can keep
// its counters in it. Every key is namespaced under prefix.
type FiberStorage struct {
	store  Store
	prefix string
}

func NewFiberStorage(store Store, prefix string) *FiberStorage {
	return &FiberStorage{store: store, prefix: prefix}
}

func (s *FiberStorage) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	val, err := s.store.Get(ctx, s.prefix+key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return val, err
}

func (s *FiberStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	return s.store.Set(ctx, s.prefix+key, val, exp)
}

func (s *FiberStorage) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	return s.store.Del(ctx, s.prefix+key)
}

func (s *FiberStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	_, err := s.store.DeletePattern(ctx, s.prefix+"*")
	return err
}

// Close is a no-op; the underlying store is closed by its owner.
func (s *FiberStorage) Close() error {
	return nil
}
