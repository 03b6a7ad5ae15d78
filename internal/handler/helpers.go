package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/validation"
)

var errInvalidBody = domain.NewValidationError("Invalid request body", "")

// parseBody decodes the JSON body into out and validates it.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody
	}
	if verr := validation.ValidateStruct(out); verr != nil {
		return verr
	}
	return nil
}

func complaintID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidComplaintID
	}
	return id, nil
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if limit := c.QueryInt("limit", 20); limit != 0 {
		params.Limit = limit
	}

	params.Validate()
	return params
}

func complaintResponse(c *fiber.Ctx, status int, complaint any) error {
	return c.Status(status).JSON(fiber.Map{
		"success":   true,
		"complaint": complaint,
	})
}
