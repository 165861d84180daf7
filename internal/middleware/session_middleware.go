package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"tienda/internal/models"
	"tienda/pkg/logger"
)

// SessionCookie carries the signed actor token.
const SessionCookie = "tienda_session"

const actorKey = "actor"

// SessionCodec signs and verifies actor tokens.
type SessionCodec interface {
	IssueToken(actor models.Actor) (string, error)
	ParseToken(token string) (models.Actor, error)
}

// Identity resolves the actor of every request from the session cookie.
// Missing or invalid tokens leave an anonymous guest without a session id.
func Identity(codec SessionCodec, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		actor := models.Actor{}
		if token := c.Cookies(SessionCookie); token != "" {
			parsed, err := codec.ParseToken(token)
			if err != nil {
				log.Debug().Err(err).Str("path", c.Path()).Msg("session token rejected")
				expireCookie(c, SessionCookie)
			} else {
				actor = parsed
			}
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// ActorFrom returns the actor resolved by Identity.
func ActorFrom(c *fiber.Ctx) models.Actor {
	if actor, ok := c.Locals(actorKey).(models.Actor); ok {
		return actor
	}
	return models.Actor{}
}

// SaveActor stores actor in the session cookie and in the request context.
// The cookie lives as long as the browser session.
func SaveActor(c *fiber.Ctx, codec SessionCodec, actor models.Actor) error {
	token, err := codec.IssueToken(actor)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals(actorKey, actor)
	return nil
}

// ClearSession forgets the actor; the next request starts as a new guest.
func ClearSession(c *fiber.Ctx) {
	expireCookie(c, SessionCookie)
	c.Locals(actorKey, models.Actor{})
}

// expireCookie deletes a cookie set on the root path.
func expireCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Path:     "/",
		Expires:  fasthttp.CookieExpireDelete,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
