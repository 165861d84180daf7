package middleware

import "github.com/gofiber/fiber/v2"

// RequireAdmin guards back-office pages. Everyone else is sent to the login
// page before the handler runs.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFrom(c).IsAdmin() {
			SetFlash(c, FlashError, "Acceso denegado. Se requieren permisos de administrador.")
			return c.Redirect("/login")
		}
		return c.Next()
	}
}

// RequireAdminAPI guards admin JSON endpoints.
func RequireAdminAPI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ActorFrom(c).IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"error":   "Acceso denegado",
			})
		}
		return c.Next()
	}
}
