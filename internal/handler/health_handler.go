package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"janmitra/internal/kv"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	store kv.Store
}

func NewHealthHandler(db Pinger, store kv.Store) *HealthHandler {
	return &HealthHandler{db: db, store: store}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, database := "ok", "ok"
	code := fiber.StatusOK
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			status, database = "degraded", "unavailable"
			code = fiber.StatusServiceUnavailable
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"success":  code == fiber.StatusOK,
		"status":   status,
		"database": database,
		"store":    h.store.Name(),
		"time":     time.Now().UTC(),
	})
}
