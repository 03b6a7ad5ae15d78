package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/middleware"
	"janmitra/internal/service/complaint"
)

type ComplaintHandler struct {
	complaintService complaint.Service
}

func NewComplaintHandler(complaintService complaint.Service) *ComplaintHandler {
	return &ComplaintHandler{complaintService: complaintService}
}

// Create accepts citizens and anonymous guests.
func (h *ComplaintHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateComplaintInput
	if err := parseBody(c, &input); err != nil {
		return err
	}
	if input.DeviceID == nil {
		if device := c.Get("X-Device-ID"); device != "" {
			input.DeviceID = &device
		}
	}

	created, err := h.complaintService.Create(c.UserContext(), middleware.GetPrincipal(c), input)
	if err != nil {
		return err
	}
	return complaintResponse(c, fiber.StatusCreated, created.Public())
}

func (h *ComplaintHandler) Get(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	found, err := h.complaintService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return complaintResponse(c, fiber.StatusOK, found)
}

func (h *ComplaintHandler) List(c *fiber.Ctx) error {
	filter := domain.ComplaintFilter{
		Status: domain.ComplaintStatus(c.Query("status")),
		City:   c.Query("city"),
		Area:   c.Query("area"),
		Sort:   domain.ComplaintSort(c.Query("sort", string(domain.SortPriority))),
	}
	if dept := c.Query("department"); dept != "" {
		id, err := uuid.Parse(dept)
		if err != nil {
			return domain.NewValidationError("Invalid department ID", "department")
		}
		filter.DepartmentID = &id
	}

	result, err := h.complaintService.ListForStaff(c.UserContext(), middleware.GetPrincipal(c), filter, getPaginationParams(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ComplaintHandler) ListMine(c *fiber.Ctx) error {
	complaints, err := h.complaintService.ListMine(c.UserContext(), middleware.GetPrincipal(c), domain.ComplaintStatus(c.Query("status")))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(complaints),
		"data":    complaints,
	})
}

func (h *ComplaintHandler) ListNearby(c *fiber.Ctx) error {
	if c.Query("lat") == "" || c.Query("lng") == "" {
		return domain.NewValidationError("lat and lng are required", "lat")
	}

	complaints, err := h.complaintService.ListNearby(c.UserContext(), domain.NearbyQuery{
		Latitude:  c.QueryFloat("lat"),
		Longitude: c.QueryFloat("lng"),
		RadiusKm:  c.QueryFloat("radius"),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"count":   len(complaints),
		"data":    complaints,
	})
}

func (h *ComplaintHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	var input domain.UpdateStatusInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	ctx := complaint.WithLoaded(c.UserContext(), middleware.GetLoadedComplaint(c))
	updated, err := h.complaintService.UpdateStatus(ctx, middleware.GetPrincipal(c), id, input)
	if err != nil {
		return err
	}
	return complaintResponse(c, fiber.StatusOK, updated)
}

func (h *ComplaintHandler) Refile(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	var input domain.RefileInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	updated, err := h.complaintService.Refile(c.UserContext(), middleware.GetPrincipal(c), id, input)
	if err != nil {
		return err
	}
	return complaintResponse(c, fiber.StatusOK, updated)
}

func (h *ComplaintHandler) ConfirmResolution(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	updated, result, err := h.complaintService.ConfirmResolution(c.UserContext(), middleware.GetPrincipal(c), id)
	if err != nil {
		return err
	}

	message := "Resolution confirmed"
	if result.AutoResolved {
		message = "Resolution confirmed. Complaint marked as resolved."
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":       true,
		"message":       message,
		"confirmations": result.Confirmations,
		"autoResolved":  result.AutoResolved,
		"complaint":     updated,
	})
}

func (h *ComplaintHandler) Upvote(c *fiber.Ctx) error {
	id, err := complaintID(c)
	if err != nil {
		return err
	}

	updated, err := h.complaintService.Upvote(c.UserContext(), middleware.GetPrincipal(c), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":   true,
		"upvotes":   updated.Upvotes,
		"complaint": updated.Public(),
	})
}
