package handler

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"janmitra/internal/domain"
	"janmitra/internal/middleware"
	"janmitra/internal/service/audit"
)

type AuditHandler struct {
	auditService audit.Service
	recorder     middleware.AuditRecorder
}

func NewAuditHandler(auditService audit.Service, recorder middleware.AuditRecorder) *AuditHandler {
	return &AuditHandler{auditService: auditService, recorder: recorder}
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	filter, err := auditFilter(c)
	if err != nil {
		return err
	}
	params := getPaginationParams(c)

	result, err := h.auditService.List(c.UserContext(), filter, params)
	if err != nil {
		return err
	}

	h.recorder.Record(domain.NewAuditEntry(middleware.GetPrincipal(c), domain.AuditActionView, "audit_logs", "", map[string]any{
		"filter": filter,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *AuditHandler) Export(c *fiber.Ctx) error {
	filter, err := auditFilter(c)
	if err != nil {
		return err
	}
	format := domain.ExportFormat(c.Query("format", string(domain.ExportJSON)))

	out, err := h.auditService.Export(c.UserContext(), filter, format)
	if err != nil {
		return err
	}

	h.recorder.Record(domain.NewAuditEntry(middleware.GetPrincipal(c), domain.AuditActionExport, "audit_logs", "", map[string]any{
		"filter": filter,
		"format": format,
		"rows":   out.Rows,
	}))

	if out.URL != "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"success":  true,
			"url":      out.URL,
			"filename": out.Filename,
			"rows":     out.Rows,
		})
	}

	c.Set(fiber.HeaderContentType, out.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, out.Filename))
	return c.Status(fiber.StatusOK).Send(out.Data)
}

func (h *AuditHandler) Actions(c *fiber.Ctx) error {
	actions, err := h.auditService.Actions(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": actions})
}

func (h *AuditHandler) ResourceTypes(c *fiber.Ctx) error {
	types, err := h.auditService.ResourceTypes(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "data": types})
}

func auditFilter(c *fiber.Ctx) (domain.AuditLogFilter, error) {
	filter := domain.AuditLogFilter{
		UserID:       c.Query("userId"),
		UserType:     c.Query("userType"),
		Action:       c.Query("action"),
		ResourceType: c.Query("resourceType"),
		ResourceID:   c.Query("resourceId"),
		DepartmentID: c.Query("departmentId"),
	}

	switch c.Query("success") {
	case "":
	case "true":
		v := true
		filter.Success = &v
	case "false":
		v := false
		filter.Success = &v
	default:
		return filter, domain.NewValidationError("success must be true or false", "success")
	}

	var err error
	if filter.StartDate, err = queryTime(c, "startDate"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = queryTime(c, "endDate"); err != nil {
		return filter, err
	}
	return filter, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.NewValidationError(fmt.Sprintf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", key), key)
}
