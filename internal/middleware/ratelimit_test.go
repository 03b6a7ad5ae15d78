package middleware

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"janmitra/internal/domain"
	"janmitra/internal/kv"
)

func limitedApp(policy RateLimitPolicy, principal *domain.Principal) *fiber.App {
	storage := kv.NewFiberStorage(kv.NewMemoryStore(time.Minute), "ratelimit:")
	app := newTestApp()
	app.Use(withPrincipal(principal))
	app.Use(RateLimit(storage, policy))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return app
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	policy := RateLimitPolicy{Name: "test", Max: 3, Window: time.Minute, Algorithm: limiter.FixedWindow{}}
	app := limitedApp(policy, nil)

	for i := 0; i < 3; i++ {
		resp, _ := doRequest(t, app, http.MethodGet, "/x", nil)
		require.Equal(t, fiber.StatusNoContent, resp.StatusCode, "request %d", i+1)
	}

	resp, body := doRequest(t, app, http.MethodGet, "/x", nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	retryAfter, err := strconv.Atoi(resp.Header.Get(fiber.HeaderRetryAfter))
	require.NoError(t, err)
	assert.Greater(t, retryAfter, 0)

	errResp := decodeError(t, body)
	assert.Equal(t, domain.ErrRateLimited.Message, errResp.Error)
	details, ok := errResp.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "test", details["policy"])
}

func TestRateLimit_SlidingWindowDefault(t *testing.T) {
	policy := RateLimitPolicy{Name: "sliding", Max: 2, Window: time.Minute}
	app := limitedApp(policy, nil)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, _ := doRequest(t, app, http.MethodGet, "/x", nil)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusNoContent, fiber.StatusNoContent, fiber.StatusTooManyRequests}, codes)
}

func TestRateLimit_WindowExpires(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a limiter window")
	}
	policy := RateLimitPolicy{Name: "expiry", Max: 1, Window: 2 * time.Second, Algorithm: limiter.FixedWindow{}}
	app := limitedApp(policy, nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/x", nil)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = doRequest(t, app, http.MethodGet, "/x", nil)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	time.Sleep(3500 * time.Millisecond)

	resp, _ = doRequest(t, app, http.MethodGet, "/x", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRateLimit_KeysByIdentity(t *testing.T) {
	storage := kv.NewFiberStorage(kv.NewMemoryStore(time.Minute), "ratelimit:")
	policy := RateLimitPolicy{Name: "ident", Max: 1, Window: time.Minute, ByIdentity: true, Algorithm: limiter.FixedWindow{}}

	alice, bob := testCitizen(), testCitizen()
	app := newTestApp()
	app.Use(func(c *fiber.Ctx) error {
		switch c.Get("X-User") {
		case "alice":
			setPrincipal(c, alice)
		case "bob":
			setPrincipal(c, bob)
		}
		return c.Next()
	})
	app.Use(RateLimit(storage, policy))
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	resp, _ := doRequest(t, app, http.MethodGet, "/x", map[string]string{"X-User": "alice"})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	resp, _ = doRequest(t, app, http.MethodGet, "/x", map[string]string{"X-User": "alice"})
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, "/x", map[string]string{"X-User": "bob"})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	// guests fall back to the caller ip
	resp, _ = doRequest(t, app, http.MethodGet, "/x", nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRateLimit_Skip(t *testing.T) {
	t.Run("Officials bypass the complaint limiter", func(t *testing.T) {
		policy := ComplaintRateLimit
		policy.Max = 1
		app := limitedApp(policy, testSupervisor())

		for i := 0; i < 3; i++ {
			resp, _ := doRequest(t, app, http.MethodGet, "/x", nil)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		}
	})

	t.Run("Health checks bypass the general limiter", func(t *testing.T) {
		policy := GeneralRateLimit
		policy.Max = 1
		app := limitedApp(policy, nil)

		for i := 0; i < 3; i++ {
			resp, _ := doRequest(t, app, http.MethodGet, "/health", nil)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		}
		resp, _ := doRequest(t, app, http.MethodGet, "/x", nil)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		resp, _ = doRequest(t, app, http.MethodGet, "/x", nil)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	})
}
