package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"janmitra/internal/logging"
	"janmitra/internal/metrics"
)

// RequestLogger writes one structured line per request and feeds the HTTP
// metrics. Like fiber's logger it renders errors itself so the logged
// status is the one the client sees.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status/100)+"xx").Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())

		event := logging.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			event = logging.Error()
		case status >= fiber.StatusBadRequest:
			event = logging.Warn()
		}
		event.
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.IP()).
			Str("principal_id", principalIDString(c)).
			Msg("request")
		return nil
	}
}

func principalIDString(c *fiber.Ctx) string {
	if p := GetPrincipal(c); p != nil {
		return p.ID.String()
	}
	return ""
}
