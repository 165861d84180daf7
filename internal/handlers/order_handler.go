package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/services"
	pkgerrors "tienda/pkg/errors"
)

// OrderHandler handles checkout and receipts.
type OrderHandler struct {
	orders *services.OrderService
	cart   *services.CartService
	auth   *services.AuthService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orders *services.OrderService, cart *services.CartService, auth *services.AuthService) *OrderHandler {
	return &OrderHandler{orders: orders, cart: cart, auth: auth}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/checkout", h.HandleCheckoutForm)
	router.Post("/procesar_pedido", h.HandlePlaceOrder)
	router.Get("/orden/:id/comprobante", h.HandleReceiptPDF)
}

// HandleCheckoutForm shows the checkout form for a non-empty cart.
func (h *OrderHandler) HandleCheckoutForm(c *fiber.Ctx) error {
	actor := middleware.ActorFrom(c)
	view, err := h.cart.View(c.UserContext(), actor)
	if err != nil {
		return err
	}
	if view.IsEmpty() {
		return redirectFlash(c, middleware.FlashWarning, "Tu carrito está vacío", "/carrito")
	}

	user, err := h.auth.GetUser(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return page(c, "checkout", fiber.Map{
		"Title": "Finalizar compra",
		"Items": view.Items,
		"Total": view.Total,
		"User":  user,
	})
}

// HandlePlaceOrder creates the order and hands over to the chosen payment
// flow.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var in services.CheckoutInput
	if err := c.BodyParser(&in); err != nil {
		return redirectFlash(c, middleware.FlashError, "Datos inválidos", "/checkout")
	}

	actor := middleware.ActorFrom(c)
	order, err := h.orders.Checkout(c.UserContext(), actor, in)
	if errors.Is(err, services.ErrEmptyCart) {
		return failRedirect(c, err, "/carrito")
	}
	if err != nil {
		return failRedirect(c, err, "/checkout")
	}

	actor.LastOrderID = order.ID
	if err := middleware.SaveActor(c, h.auth, actor); err != nil {
		return err
	}

	if order.PaymentMethod == models.PaymentWhatsApp {
		return c.Redirect(h.orders.WhatsAppURL(order))
	}

	flash := middleware.Flash{Kind: middleware.FlashSuccess, Message: "Pago simulado con QR Simple. Generando comprobante..."}
	if order.PaymentMethod == models.PaymentTigoMoney {
		flash.Message = "Pago procesado con Tigo Money. Redirigiendo al comprobante..."
	}
	return page(c, "comprobante", fiber.Map{
		"Title":        "Comprobante",
		"DocumentType": "Comprobante",
		"Order":        order,
		"Flash":        flash,
		"ReceiptURL":   fmt.Sprintf("/orden/%d/comprobante", order.ID),
	})
}

// HandleReceiptPDF downloads the PDF receipt of an order.
func (h *OrderHandler) HandleReceiptPDF(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return fiber.ErrNotFound
	}
	order, pdf, err := h.orders.ReceiptPDF(c.UserContext(), middleware.ActorFrom(c), id)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeForbidden {
			return fiber.NewError(fiber.StatusForbidden, "Acceso denegado")
		}
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="comprobante-%d.pdf"`, order.ID))
	return c.Send(pdf)
}
