package http

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// SessionResponse is returned when a viewer session starts.
type SessionResponse struct {
	SessionID string                `json:"session_id"`
	State     domain.SelectionState `json:"state"`
}

// SelectRequest opens a feature by key, or by pixel when key is empty.
type SelectRequest struct {
	Key string   `json:"key"`
	X   *float64 `json:"x"`
	Y   *float64 `json:"y"`
}

// LocateRequest carries a geolocation result. A null position is a failed
// lookup on the viewer side.
type LocateRequest struct {
	Position *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"position"`
	Zoom float64 `json:"zoom"`
}

// CreateSessionHandler starts a viewer session with a closed detail view.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, state, err := deps.Sessions.CreateSession(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(SessionResponse{SessionID: id, State: state})
	}
}

// GetSessionHandler returns the current selection state of a session.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := deps.Sessions.State(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(state)
	}
}

// DeleteSessionHandler ends a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.EndSession(c.UserContext(), c.Params("id")); err != nil {
			return errFromDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SelectHandler opens a feature in the session's detail view. Selecting
// while open replaces the open feature.
func SelectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SelectRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		id := c.Params("id")
		var (
			state domain.SelectionState
			err   error
		)
		switch {
		case req.Key != "":
			state, err = deps.Sessions.Select(c.UserContext(), id, req.Key)
		case req.X != nil && req.Y != nil:
			state, err = deps.Sessions.SelectAt(c.UserContext(), id, *req.X, *req.Y)
		default:
			return errBadRequest(c, "key or x and y are required")
		}
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(state)
	}
}

// CloseSelectionHandler closes the session's detail view. Closing an already
// closed view succeeds with no change.
func CloseSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state, err := deps.Sessions.Close(c.UserContext(), c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(state)
	}
}

// LocateHandler places the session's user marker and suggests a viewport.
func LocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LocateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		pt, ok := orb.Point{math.NaN(), math.NaN()}, false
		if req.Position != nil {
			pt, ok = orb.Point{req.Position.X, req.Position.Y}, true
		}
		res, err := deps.Sessions.Locate(c.UserContext(), c.Params("id"), pt, req.Zoom, ok)
		if err != nil {
			return errFromDomain(c, err)
		}
		return c.JSON(res)
	}
}

// GetMarkerHandler returns the session's user marker.
func GetMarkerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		marker, err := deps.Sessions.UserMarker(c.Params("id"))
		if err != nil {
			return errFromDomain(c, err)
		}
		if marker == nil {
			return errNotFound(c, "no location yet")
		}
		return c.JSON(marker)
	}
}
