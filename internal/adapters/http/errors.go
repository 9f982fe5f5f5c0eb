package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/territorymap/internal/core/domain"
	"github.com/samirrijal/territorymap/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int            `json:"status"`
	Code      string         `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string         `json:"message"` // Human-readable message
	RequestID string         `json:"request_id,omitempty"`
	Notice    *domain.Notice `json:"notice,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnavailable returns a 503 carrying the generic load notice. Load
// failure detail stays in the logs.
func errUnavailable(c *fiber.Ctx, err error) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(503).JSON(APIError{
		Status:    503,
		Code:      "scene_unavailable",
		Message:   usecases.LoadErrorMessage,
		RequestID: reqID,
		Notice:    usecases.LoadNotice(err),
	})
}

// errFromDomain maps a use case error to its HTTP envelope.
func errFromDomain(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSceneNotReady), errors.Is(err, domain.ErrLoad):
		return errUnavailable(c, err)
	case errors.Is(err, domain.ErrSessionNotFound):
		return errNotFound(c, "session not found")
	case errors.Is(err, domain.ErrFeatureNotFound):
		return errNotFound(c, "feature not found")
	case errors.Is(err, usecases.ErrUnsupportedFormat):
		return errBadRequest(c, err.Error())
	default:
		slog.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err)
		return errInternal(c, "internal error")
	}
}
