package middleware

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// FlashCookie holds a one-shot message shown on the next page.
const FlashCookie = "tienda_flash"

// Flash kinds understood by the layout.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a message queued for the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// SetFlash queues a message for the next page.
func SetFlash(c *fiber.Ctx, kind, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     FlashCookie,
		Value:    url.QueryEscape(kind + "|" + message),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// PopFlash returns the queued message, if any, and clears it.
func PopFlash(c *fiber.Ctx) (Flash, bool) {
	raw := c.Cookies(FlashCookie)
	if raw == "" {
		return Flash{}, false
	}
	expireCookie(c, FlashCookie)

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return Flash{}, false
	}
	kind, message, ok := strings.Cut(decoded, "|")
	if !ok || message == "" {
		return Flash{}, false
	}
	return Flash{Kind: kind, Message: message}, true
}
