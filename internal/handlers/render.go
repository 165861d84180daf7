package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/services"
	pkgerrors "tienda/pkg/errors"
)

const mainLayout = "layouts/main"

// page renders view inside the main layout, adding the actor, the pending
// flash message and the store name.
func page(c *fiber.Ctx, view string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	actor := middleware.ActorFrom(c)
	data["Actor"] = actor
	data["IsAdmin"] = actor.IsAdmin()
	data["StoreName"] = c.App().Config().AppName
	if _, set := data["Flash"]; !set {
		if flash, ok := middleware.PopFlash(c); ok {
			data["Flash"] = flash
		}
	}
	return c.Render(view, data, mainLayout)
}

// redirectFlash queues a message and redirects with 302.
func redirectFlash(c *fiber.Ctx, kind, message, location string) error {
	middleware.SetFlash(c, kind, message)
	return c.Redirect(location)
}

// failRedirect turns a service error into a flash message. Internal errors
// are returned to the error handler instead.
func failRedirect(c *fiber.Ctx, err error, location string) error {
	if pkgerrors.CodeOf(err) == pkgerrors.CodeInternal {
		return err
	}
	return redirectFlash(c, middleware.FlashError, pkgerrors.PublicMessage(err), location)
}

// jsonFail writes the {success:false} envelope with the status of err.
func jsonFail(c *fiber.Ctx, err error, key string) error {
	meta := pkgerrors.MetadataFor(pkgerrors.CodeOf(err))
	return c.Status(meta.HTTPStatus).JSON(fiber.Map{
		"success": false,
		key:       pkgerrors.PublicMessage(err),
	})
}

// ensureSession gives a guest a session id and persists it, so cart rows
// created in this request stay reachable.
func ensureSession(c *fiber.Ctx, auth *services.AuthService) (models.Actor, error) {
	actor, changed := auth.EnsureGuestSession(middleware.ActorFrom(c))
	if changed {
		if err := middleware.SaveActor(c, auth, actor); err != nil {
			return actor, err
		}
	}
	return actor, nil
}

func paramID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// formValues returns every value posted for key, for urlencoded and
// multipart bodies alike.
func formValues(c *fiber.Ctx, key string) []string {
	if form, err := c.MultipartForm(); err == nil {
		return form.Value[key]
	}
	var out []string
	for _, v := range c.Request().PostArgs().PeekMulti(key) {
		out = append(out, string(v))
	}
	return out
}
