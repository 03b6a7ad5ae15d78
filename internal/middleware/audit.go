package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"janmitra/internal/domain"
)

const maxAuditBodySize = 100 * 1024

var auditSkipPrefixes = []string{
	"/health",
	"/favicon.ico",
	"/static",
	"/metrics",
	"/api/audit-logs/export",
}

type AuditRecorder interface {
	Record(entry *domain.AuditLog)
}

// AuditTrail records one audit entry per API request after the response is
// rendered. Errors are rendered here so the recorded status is final.
func AuditTrail(recorder AuditRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if !strings.HasPrefix(path, "/api") || skipAudit(path) {
			return c.Next()
		}

		start := time.Now()
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		resourceType, resourceID := auditResource(path)
		details := map[string]any{
			"method":     c.Method(),
			"path":       path,
			"statusCode": status,
			"durationMs": time.Since(start).Milliseconds(),
		}
		if q := string(c.Request().URI().QueryString()); q != "" {
			details["query"] = q
		}

		entry := domain.NewAuditEntry(
			GetPrincipal(c),
			c.Method()+"_"+strings.ToUpper(strings.ReplaceAll(resourceType, "-", "_")),
			resourceType,
			resourceID,
			details,
		)
		entry.Success = status < fiber.StatusBadRequest
		entry.IPAddress = optional(c.IP())
		entry.UserAgent = optional(c.Get(fiber.HeaderUserAgent))
		entry.DeviceID = optional(c.Get("X-Device-ID"))
		entry.SessionID = optional(requestID(c))

		if !entry.Success {
			body := c.Response().Body()
			msg := "[LARGE_RESPONSE]"
			if len(body) <= maxAuditBodySize {
				msg = string(body)
			}
			entry.ErrorMessage = &msg
		}

		recorder.Record(entry)
		return nil
	}
}

func skipAudit(path string) bool {
	for _, prefix := range auditSkipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// auditResource maps /api/<resource>[/<id>...] to its resource type and id.
func auditResource(path string) (string, string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 {
		return "system", ""
	}
	resourceType := parts[1]

	for _, part := range parts[2:] {
		if _, err := uuid.Parse(part); err == nil {
			return resourceType, part
		}
	}
	return resourceType, ""
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
