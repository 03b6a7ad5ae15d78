package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"janmitra/internal/domain"
	"janmitra/internal/metrics"
)

// RateLimitPolicy is one named request ceiling.
type RateLimitPolicy struct {
	Name   string
	Max    int
	Window time.Duration
	// ByIdentity keys authenticated callers by principal id instead of ip.
	ByIdentity bool
	Skip       func(c *fiber.Ctx) bool
	// Algorithm defaults to a sliding window.
	Algorithm limiter.LimiterHandler
}

var (
	AuthRateLimit = RateLimitPolicy{
		Name:   "auth",
		Max:    5,
		Window: 10 * time.Minute,
	}

	ComplaintRateLimit = RateLimitPolicy{
		Name:       "complaint",
		Max:        20,
		Window:     time.Hour,
		ByIdentity: true,
		Skip:       IsOfficial,
	}

	EscalateRateLimit = RateLimitPolicy{
		Name:       "escalate",
		Max:        10,
		Window:     7 * 24 * time.Hour,
		ByIdentity: true,
	}

	GeneralRateLimit = RateLimitPolicy{
		Name:       "general",
		Max:        100,
		Window:     15 * time.Minute,
		ByIdentity: true,
		Skip: func(c *fiber.Ctx) bool {
			switch c.Path() {
			case "/health", "/metrics", "/favicon.ico":
				return true
			}
			return false
		},
	}
)

// RateLimit enforces policy with counters kept in storage, so every
// instance sharing the store shares the budget.
func RateLimit(storage fiber.Storage, policy RateLimitPolicy) fiber.Handler {
	algorithm := policy.Algorithm
	if algorithm == nil {
		algorithm = limiter.SlidingWindow{}
	}

	return limiter.New(limiter.Config{
		Next:       policy.Skip,
		Max:        policy.Max,
		Expiration: policy.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return policy.Name + ":" + rateLimitKey(c, policy.ByIdentity)
		},
		LimitReached: func(c *fiber.Ctx) error {
			metrics.RateLimitRejections.WithLabelValues(policy.Name).Inc()

			retryAfter, _ := strconv.Atoi(c.GetRespHeader(fiber.HeaderRetryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: domain.ErrRateLimited.Message,
				Details: fiber.Map{
					"policy":     policy.Name,
					"retryAfter": retryAfter,
				},
			})
		},
		Storage:           storage,
		LimiterMiddleware: algorithm,
	})
}

func rateLimitKey(c *fiber.Ctx, byIdentity bool) string {
	if byIdentity {
		if p := GetPrincipal(c); p != nil {
			return "user:" + p.ID.String()
		}
	}
	return "ip:" + c.IP()
}
