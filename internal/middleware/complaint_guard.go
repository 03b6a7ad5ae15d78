package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/service/complaint"
)

const ComplaintContextKey = "complaint"

// ComplaintLoader is the read the ownership guard needs.
type ComplaintLoader interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Complaint, error)
}

// DepartmentOwnership loads the :id complaint and lets staff through only
// for their own department. The loaded complaint is kept on the request for
// the handler.
func DepartmentOwnership(loader ComplaintLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return domain.ErrInvalidComplaintID
		}

		loaded, err := loader.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		if err := complaint.CheckDepartment(GetPrincipal(c), loaded); err != nil {
			return err
		}

		c.Locals(ComplaintContextKey, loaded)
		return c.Next()
	}
}

func GetLoadedComplaint(c *fiber.Ctx) *domain.Complaint {
	loaded, ok := c.Locals(ComplaintContextKey).(*domain.Complaint)
	if !ok {
		return nil
	}
	return loaded
}
