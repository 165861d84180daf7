package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	pkgerrors "tienda/pkg/errors"
	"tienda/pkg/logger"
)

// ErrorHandler answers errors that escaped a handler. API paths get the JSON
// envelope, pages a plain error view.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		status := pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).HTTPStatus
		message := pkgerrors.PublicMessage(err)

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			message = fe.Message
		}
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
		}

		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(status).JSON(fiber.Map{"success": false, "error": message})
		}
		c.Status(status)
		if renderErr := page(c, "error", fiber.Map{"Title": "Error", "Status": status, "Message": message}); renderErr != nil {
			return c.SendString(message)
		}
		return nil
	}
}
