package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/middleware"
	"janmitra/internal/service/notification"
)

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	unreadOnly := c.QueryBool("unreadOnly", false)

	result, err := h.notifService.List(c.UserContext(), middleware.GetPrincipalID(c), unreadOnly, getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifService.GetUnreadCount(c.UserContext(), middleware.GetPrincipalID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   count,
	})
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	notifID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.NewValidationError("Invalid notification ID", "id")
	}

	if err := h.notifService.MarkAsRead(c.UserContext(), notifID, middleware.GetPrincipalID(c)); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	if err := h.notifService.MarkAllAsRead(c.UserContext(), middleware.GetPrincipalID(c)); err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
