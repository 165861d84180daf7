package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/services"
	pkgerrors "tienda/pkg/errors"
)

// AdminHandler serves the back-office pages.
type AdminHandler struct {
	admin      *services.AdminService
	catalog    *services.ProductService
	orders     *services.OrderService
	moderation *services.ModerationService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admin *services.AdminService, catalog *services.ProductService, orders *services.OrderService, moderation *services.ModerationService) *AdminHandler {
	return &AdminHandler{admin: admin, catalog: catalog, orders: orders, moderation: moderation}
}

// RegisterRoutes registers the back-office routes. Every route is gated on
// the admin role.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	gate := middleware.RequireAdmin()
	router.Get("/admin", gate, h.HandleDashboard)
	router.Get("/productos", gate, h.HandleProducts)
	router.Get("/ordenes", gate, h.HandleOrders)
	router.Post("/actualizar_orden/:id", gate, h.HandleUpdateOrder)
	router.Post("/actualizar_ordenes_masa", gate, h.HandleBulkUpdateOrders)
	router.Get("/editar_producto/:id", gate, h.HandleEditProductForm)
	router.Post("/editar_producto/:id", gate, h.HandleEditProduct)
	router.Post("/eliminar_producto/:id", gate, h.HandleDeleteProduct)
	router.Get("/moderar", gate, h.HandleModeration)
	router.Post("/moderar/:id/aprobar", gate, h.HandleApproveComment)
	router.Post("/moderar/:id/rechazar", gate, h.HandleRejectComment)
}

func (h *AdminHandler) HandleDashboard(c *fiber.Ctx) error {
	d, err := h.admin.Dashboard(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return page(c, "admin", fiber.Map{"Title": "Panel de administración", "Dashboard": d})
}

func (h *AdminHandler) HandleProducts(c *fiber.Ctx) error {
	products, err := h.catalog.ListAdmin(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return page(c, "productos", fiber.Map{"Title": "Productos", "Products": products})
}

// HandleOrders lists orders with the estado, fecha_inicio, fecha_fin and
// metodo_pago filters.
func (h *AdminHandler) HandleOrders(c *fiber.Ctx) error {
	var in services.OrderListInput
	if err := c.QueryParser(&in); err != nil {
		return fiber.ErrBadRequest
	}

	data := fiber.Map{
		"Title":          "Órdenes",
		"Filter":         in,
		"Statuses":       models.OrderStatuses,
		"PaymentMethods": models.PaymentMethods,
	}
	orders, err := h.orders.List(c.UserContext(), middleware.ActorFrom(c), in)
	switch {
	case pkgerrors.Is(err, pkgerrors.CodeValidation):
		data["Flash"] = middleware.Flash{Kind: middleware.FlashError, Message: pkgerrors.PublicMessage(err)}
	case err != nil:
		return err
	}
	data["Orders"] = orders
	return page(c, "ordenes", data)
}

func (h *AdminHandler) HandleUpdateOrder(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return redirectFlash(c, middleware.FlashError, "Orden no encontrada", "/ordenes")
	}
	err := h.orders.UpdateStatus(c.UserContext(), middleware.ActorFrom(c), id, c.FormValue("estado"))
	if err != nil {
		return failRedirect(c, err, "/ordenes")
	}
	return redirectFlash(c, middleware.FlashSuccess, "Estado actualizado", "/admin")
}

// HandleBulkUpdateOrders moves every selected order to nuevo_estado.
func (h *AdminHandler) HandleBulkUpdateOrders(c *fiber.Ctx) error {
	var ids []uint
	for _, raw := range formValues(c, "ordenes_seleccionadas") {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return redirectFlash(c, middleware.FlashError, "Orden no encontrada", "/ordenes")
		}
		ids = append(ids, uint(id))
	}

	status := c.FormValue("nuevo_estado")
	n, err := h.orders.BulkUpdateStatus(c.UserContext(), middleware.ActorFrom(c), ids, status)
	if err != nil {
		return failRedirect(c, err, "/ordenes")
	}
	return redirectFlash(c, middleware.FlashSuccess, fmt.Sprintf("Estado de %d órdenes actualizado a %s.", n, status), "/ordenes")
}

func (h *AdminHandler) HandleEditProductForm(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return redirectFlash(c, middleware.FlashError, "Producto no encontrado", "/productos")
	}
	product, err := h.catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return failRedirect(c, err, "/productos")
	}
	categories, err := h.catalog.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return page(c, "editar_producto", fiber.Map{
		"Title":      "Editar producto",
		"Product":    product,
		"Categories": categories,
	})
}

// HandleEditProduct saves the edit form, with an optional new image.
func (h *AdminHandler) HandleEditProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return redirectFlash(c, middleware.FlashError, "Producto no encontrado", "/productos")
	}
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return redirectFlash(c, middleware.FlashError, "Datos inválidos", c.Path())
	}

	_, err := h.catalog.UpdateProduct(c.UserContext(), middleware.ActorFrom(c), id, in, uploadedImage(c))
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return failRedirect(c, err, "/productos")
	}
	if err != nil {
		return failRedirect(c, err, c.Path())
	}
	return redirectFlash(c, middleware.FlashSuccess, "Producto actualizado exitosamente", c.Path())
}

func (h *AdminHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return redirectFlash(c, middleware.FlashError, "Producto no encontrado", "/productos")
	}
	if err := h.catalog.DeleteProduct(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return failRedirect(c, err, "/productos")
	}
	return redirectFlash(c, middleware.FlashSuccess, "Producto eliminado exitosamente", "/productos")
}

func (h *AdminHandler) HandleModeration(c *fiber.Ctx) error {
	comments, err := h.moderation.Pending(c.UserContext(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return page(c, "moderar", fiber.Map{"Title": "Moderar comentarios", "Comments": comments})
}

func (h *AdminHandler) HandleApproveComment(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return redirectFlash(c, middleware.FlashError, "Comentario no encontrado", "/moderar")
	}
	if err := h.moderation.Approve(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return failRedirect(c, err, "/moderar")
	}
	return redirectFlash(c, middleware.FlashSuccess, "Comentario aprobado", "/moderar")
}

func (h *AdminHandler) HandleRejectComment(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return redirectFlash(c, middleware.FlashError, "Comentario no encontrado", "/moderar")
	}
	if err := h.moderation.Reject(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return failRedirect(c, err, "/moderar")
	}
	return redirectFlash(c, middleware.FlashSuccess, "Comentario rechazado", "/moderar")
}
