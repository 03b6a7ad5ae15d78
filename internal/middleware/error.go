package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"janmitra/internal/domain"
	"janmitra/internal/logging"
	"janmitra/internal/validation"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
	TraceID string `json:"traceId,omitempty"`
}

// ErrorHandler renders every error returned by a handler or middleware as
// the JSON failure envelope. Internal details are only exposed outside
// production.
func ErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, resp := errorResponse(err)

		if code >= fiber.StatusInternalServerError {
			resp.TraceID = uuid.New().String()[:8]
			logging.Error().Err(err).
				Str("trace_id", resp.TraceID).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("request failed")
			if production {
				resp.Details = nil
			} else if resp.Details == nil {
				resp.Details = err.Error()
			}
		}

		return c.Status(code).JSON(resp)
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var domErr *domain.Error
	if errors.As(err, &domErr) {
		return domErr.HTTPStatus(), ErrorResponse{
			Error:   domErr.Message,
			Field:   domErr.Field,
			Details: domErr.Details,
		}
	}

	var valErr *validation.RequestValidationError
	if errors.As(err, &valErr) {
		field, message := valErr.First()
		return fiber.StatusBadRequest, ErrorResponse{Error: message, Field: field}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, ErrorResponse{Error: fiberErr.Message}
	}

	return fiber.StatusInternalServerError, ErrorResponse{Error: "Internal server error"}
}
