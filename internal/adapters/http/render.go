package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RenderHandler encodes the scene in the :format path param. The same
// relayout query as GET /v1/scene applies.
func RenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scene, err := sceneForRequest(c, deps)
		if errors.Is(err, errBadRect) {
			return errBadRequest(c, err.Error())
		}
		if err != nil {
			return errFromDomain(c, err)
		}

		data, contentType, err := deps.Renders.Render(c.UserContext(), c.Params("format"), scene)
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderETag, `"`+scene.Version+`"`)
		return c.Send(data)
	}
}

// ListFormatsHandler lists the registered render formats.
func ListFormatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"formats": deps.Renders.Formats()})
	}
}
