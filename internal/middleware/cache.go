package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"janmitra/internal/domain"
	"janmitra/internal/kv"
	"janmitra/internal/logging"
	"janmitra/internal/metrics"
)

const cacheHeader = "X-Cache"

// CacheKeyFunc builds the cache key for a request. An empty key disables
// caching for that request.
type CacheKeyFunc func(c *fiber.Ctx) string

// Cache serves GET responses from store and stores successful JSON
// responses for ttl. Store failures count as misses.
func Cache(store kv.Store, ttl time.Duration, keyFn CacheKeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}
		key := keyFn(c)
		if key == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		body, err := store.Get(ctx, key)
		if err == nil {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			c.Set(cacheHeader, "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(body)
		}
		if !errors.Is(err, kv.ErrNotFound) {
			logging.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		metrics.CacheRequests.WithLabelValues("miss").Inc()

		if err := c.Next(); err != nil {
			return err
		}
		c.Set(cacheHeader, "MISS")

		resp := c.Response()
		status := resp.StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}
		if !strings.HasPrefix(string(resp.Header.ContentType()), fiber.MIMEApplicationJSON) {
			return nil
		}

		data := append([]byte(nil), resp.Body()...)
		if err := store.Set(ctx, key, data, ttl); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		return nil
	}
}

// InvalidateCache deletes the keys matching patterns once the wrapped
// handler has succeeded. Failures are logged and never reach the client.
func InvalidateCache(store kv.Store, patterns func(c *fiber.Ctx) []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		for _, pattern := range patterns(c) {
			if _, err := store.DeletePattern(c.UserContext(), pattern); err != nil {
				logging.Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation failed")
			}
		}
		return nil
	}
}

func StaffComplaintsCacheKey(c *fiber.Ctx) string {
	p := GetPrincipal(c)
	if p == nil {
		return ""
	}

	dept := c.Query("department")
	if p.Role == domain.RoleStaff {
		// staff are always scoped to their own department
		dept = ""
		if p.DepartmentID != nil {
			dept = p.DepartmentID.String()
		}
	}

	return strings.Join([]string{
		"complaints:staff",
		c.Query("status"),
		dept,
		c.Query("city"),
		c.Query("area"),
		c.Query("sort", string(domain.SortPriority)),
		c.Query("page", "1"),
		c.Query("limit", "20"),
	}, ":")
}

func CitizenComplaintsCacheKey(c *fiber.Ctx) string {
	p := GetPrincipal(c)
	if p == nil || p.Role != domain.RoleCitizen {
		return ""
	}
	key := "complaints:citizen:" + p.ID.String()
	if status := c.Query("status"); status != "" {
		key += ":" + status
	}
	return key
}

func NearbyComplaintsCacheKey(c *fiber.Ctx) string {
	lat, lng := c.Query("lat"), c.Query("lng")
	if lat == "" || lng == "" {
		return ""
	}
	return "complaints:nearby:" + lat + ":" + lng + ":" + c.Query("radius", "10")
}

func ComplaintCacheKey(c *fiber.Ctx) string {
	id := c.Params("id")
	if id == "" {
		return ""
	}
	return "complaint:" + id
}

func DashboardCacheKey(*fiber.Ctx) string {
	return "dashboard:supervisor"
}

// ComplaintCachePatterns lists what a complaint mutation makes stale.
func ComplaintCachePatterns(c *fiber.Ctx) []string {
	patterns := []string{"complaints:*", "dashboard:*"}
	if id := c.Params("id"); id != "" {
		patterns = append(patterns, "complaint:"+id)
	}
	if p := GetPrincipal(c); p != nil && p.Role == domain.RoleCitizen {
		patterns = append(patterns, "complaints:citizen:"+p.ID.String()+"*")
	}
	return patterns
}
