package kv

import (
	"context"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fiber.Storage = (*FiberStorage)(nil)
var _ Store = (*MemoryStore)(nil)
var _ Store = (*RedisStore)(nil)

func TestMemoryStore_GetSet(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	t.Run("Missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Round trip copies the value", func(t *testing.T) {
		val := []byte(`{"a":1}`)
		require.NoError(t, s.Set(ctx, "k", val, 0))
		val[0] = 'x'

		got, err := s.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
		time.Sleep(100 * time.Millisecond)
		_, err := s.Get(ctx, "short")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemoryStore_Incr(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, err := s.Incr(ctx, "counter", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	got, err := s.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "3", string(got))

	require.NoError(t, s.Expire(ctx, "counter", 20*time.Millisecond))
	time.Sleep(60 * time.Millisecond)
	n, err := s.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_DeletePattern(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	ctx := context.Background()

	for _, k := range []string{
		"complaints:staff:::1:20",
		"complaints:citizen:abc",
		"complaints:citizen:abc:resolved",
		"complaint:123",
		"dashboard:supervisor",
	} {
		require.NoError(t, s.Set(ctx, k, []byte("x"), 0))
	}

	n, err := s.DeletePattern(ctx, "complaints:citizen:abc*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.DeletePattern(ctx, "complaints:*")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, "complaint:123")
	assert.NoError(t, err)

	_, err = s.DeletePattern(ctx, "[")
	assert.Error(t, err)
}

func TestFiberStorage(t *testing.T) {
	mem := NewMemoryStore(time.Minute)
	s := NewFiberStorage(mem, "ratelimit:")

	val, err := s.Get("auth:1.2.3.4")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("auth:1.2.3.4", []byte{1, 2}, time.Minute))
	val, err = s.Get("auth:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, val)

	raw, err := mem.Get(context.Background(), "ratelimit:auth:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, raw)

	require.NoError(t, mem.Set(context.Background(), "other", []byte("keep"), 0))
	require.NoError(t, s.Reset())

	val, err = s.Get("auth:1.2.3.4")
	require.NoError(t, err)
	assert.Nil(t, val)
	_, err = mem.Get(context.Background(), "other")
	assert.NoError(t, err)
}
