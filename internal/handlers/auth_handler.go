package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tienda/internal/middleware"
	"tienda/internal/services"
	"tienda/pkg/logger"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{authService: authService, log: log}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/login", h.HandleLoginForm)
	router.Post("/login", h.HandleLogin)
	router.Get("/registro", h.HandleRegisterForm)
	router.Post("/registro", h.HandleRegister)
	router.Get("/logout", h.HandleLogout)
}

func (h *AuthHandler) HandleLoginForm(c *fiber.Ctx) error {
	return page(c, "login", fiber.Map{"Title": "Iniciar sesión"})
}

func (h *AuthHandler) HandleRegisterForm(c *fiber.Ctx) error {
	return page(c, "registro", fiber.Map{"Title": "Registro"})
}

// HandleLogin signs the user in and moves the guest cart to the account.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return redirectFlash(c, middleware.FlashError, "Datos inválidos", "/login")
	}

	actor, err := h.authService.Login(c.UserContext(), middleware.ActorFrom(c), in)
	if err != nil {
		return failRedirect(c, err, "/login")
	}
	if err := middleware.SaveActor(c, h.authService, actor); err != nil {
		return err
	}

	h.log.Info().Uint("user_id", actor.UserID).Msg("user logged in")
	middleware.SetFlash(c, middleware.FlashSuccess, "¡Bienvenido, "+actor.Name+"!")
	if actor.IsAdmin() {
		return c.Redirect("/admin")
	}
	return c.Redirect("/")
}

// HandleRegister creates a customer account and signs it in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return redirectFlash(c, middleware.FlashError, "Datos inválidos", "/registro")
	}

	actor, err := h.authService.Register(c.UserContext(), middleware.ActorFrom(c), in)
	if err != nil {
		return failRedirect(c, err, "/registro")
	}
	if err := middleware.SaveActor(c, h.authService, actor); err != nil {
		return err
	}
	return redirectFlash(c, middleware.FlashSuccess, "¡Cuenta creada exitosamente! Bienvenido.", "/")
}

// HandleLogout drops the session entirely.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	middleware.ClearSession(c)
	return redirectFlash(c, middleware.FlashInfo, "Sesión cerrada exitosamente", "/")
}
