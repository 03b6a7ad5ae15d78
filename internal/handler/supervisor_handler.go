package handler

import (
	"github.com/gofiber/fiber/v2"

	"janmitra/internal/domain"
	"janmitra/internal/middleware"
	"janmitra/internal/service/complaint"
)

type SupervisorHandler struct {
	complaintService complaint.Service
}

func NewSupervisorHandler(complaintService complaint.Service) *SupervisorHandler {
	return &SupervisorHandler{complaintService: complaintService}
}

func (h *SupervisorHandler) MarkUrgent(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	var input domain.MarkUrgentInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	updated, err := h.complaintService.MarkUrgent(c.UserContext(), middleware.GetPrincipal(c), id, input)
	if err != nil {
		return err
	}
	return complaintResponse(c, fiber.StatusOK, updated)
}

func (h *SupervisorHandler) Escalate(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	var input domain.EscalateInput
	if len(c.Body()) > 0 {
		if err := parseBody(c, &input); err != nil {
			return err
		}
	}

	updated, err := h.complaintService.Escalate(c.UserContext(), middleware.GetPrincipal(c), id, input)
	if err != nil {
		return err
	}
	return complaintResponse(c, fiber.StatusOK, updated)
}

func (h *SupervisorHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.complaintService.SupervisorDashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(dashboard)
}

func (h *SupervisorHandler) AutoResolve(c *fiber.Ctx) error {
	resolved, err := h.complaintService.AutoResolveStale(c.UserContext())
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(resolved))
	for _, r := range resolved {
		ids = append(ids, r.ID.String())
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":  true,
		"resolved": len(resolved),
		"ids":      ids,
	})
}
