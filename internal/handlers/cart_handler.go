package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/middleware"
	"tienda/internal/services"
	pkgerrors "tienda/pkg/errors"
)

// CartHandler handles HTTP requests for the shopping cart.
type CartHandler struct {
	cart *services.CartService
	auth *services.AuthService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cart *services.CartService, auth *services.AuthService) *CartHandler {
	return &CartHandler{cart: cart, auth: auth}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/agregar_carrito", h.HandleAdd)
	router.Get("/carrito", h.HandleView)
	router.Post("/actualizar_carrito", h.HandleUpdate)
	router.Get("/eliminar_carrito/:id", h.HandleRemove)
	router.Get("/api/carrito/count", h.HandleCount)
}

// HandleAdd adds a product to the cart and answers JSON.
func (h *CartHandler) HandleAdd(c *fiber.Ctx) error {
	actor, err := ensureSession(c, h.auth)
	if err != nil {
		return err
	}

	productID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("producto_id")), 10, 64)
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Producto no encontrado"})
	}
	quantity := 1
	if raw := strings.TrimSpace(c.FormValue("cantidad")); raw != "" {
		if quantity, err = strconv.Atoi(raw); err != nil {
			return c.JSON(fiber.Map{"success": false, "message": "Cantidad inválida"})
		}
	}

	if err := h.cart.Add(c.UserContext(), actor, uint(productID), quantity); err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeInternal {
			return err
		}
		return c.JSON(fiber.Map{"success": false, "message": pkgerrors.PublicMessage(err)})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Producto agregado al carrito"})
}

// HandleView shows the cart.
func (h *CartHandler) HandleView(c *fiber.Ctx) error {
	view, err := h.cart.View(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return page(c, "carrito", fiber.Map{
		"Title": "Carrito",
		"Items": view.Items,
		"Total": view.Total,
	})
}

// HandleUpdate changes a line's quantity; zero or less removes it.
func (h *CartHandler) HandleUpdate(c *fiber.Ctx) error {
	itemID, err := strconv.ParseUint(c.FormValue("item_id"), 10, 64)
	if err != nil {
		return redirectFlash(c, middleware.FlashError, "Producto no encontrado", "/carrito")
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(c.FormValue("cantidad")))
	if err != nil {
		return redirectFlash(c, middleware.FlashError, "Cantidad inválida", "/carrito")
	}
	if err := h.cart.Update(c.UserContext(), middleware.ActorFrom(c), uint(itemID), quantity); err != nil {
		return failRedirect(c, err, "/carrito")
	}
	return c.Redirect("/carrito")
}

// HandleRemove deletes one line.
func (h *CartHandler) HandleRemove(c *fiber.Ctx) error {
	if id, ok := paramID(c); ok {
		if err := h.cart.Remove(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
			return failRedirect(c, err, "/carrito")
		}
	}
	return c.Redirect("/carrito")
}

// HandleCount answers the number of units in the cart.
func (h *CartHandler) HandleCount(c *fiber.Ctx) error {
	n, err := h.cart.Count(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"count": n})
}
