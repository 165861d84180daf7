package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tienda/internal/middleware"
	"tienda/internal/services"
	pkgerrors "tienda/pkg/errors"
)

// CatalogHandler serves the storefront pages.
type CatalogHandler struct {
	service *services.ProductService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.ProductService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the storefront routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleHome)
	router.Get("/producto/:id", h.HandleProduct)
	router.Get("/buscar", h.HandleSearch)
}

// HandleHome shows the catalog grouped by category type.
func (h *CatalogHandler) HandleHome(c *fiber.Ctx) error {
	home, err := h.service.Home(c.UserContext())
	if err != nil {
		return err
	}
	return page(c, "index", fiber.Map{
		"Title":         "Inicio",
		"Sections":      home.Sections,
		"Categories":    home.Categories,
		"StoreComments": home.StoreComments,
	})
}

// HandleProduct shows one active product.
func (h *CatalogHandler) HandleProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return redirectFlash(c, middleware.FlashError, "Producto no encontrado", "/")
	}
	detail, err := h.service.Detail(c.UserContext(), middleware.ActorFrom(c), id)
	if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		return redirectFlash(c, middleware.FlashError, "Producto no encontrado", "/")
	}
	if err != nil {
		return err
	}
	return page(c, "producto", fiber.Map{
		"Title":    detail.Product.Name,
		"Product":  detail.Product,
		"Comments": detail.Comments,
		"Related":  detail.Related,
	})
}

// HandleSearch lists active products matching q and categoria.
func (h *CatalogHandler) HandleSearch(c *fiber.Ctx) error {
	res, err := h.service.Search(c.UserContext(), c.Query("q"), c.Query("categoria"))
	if err != nil {
		return err
	}
	return page(c, "buscar", fiber.Map{
		"Title":    "Buscar",
		"Query":    res.Query,
		"Type":     string(res.Type),
		"Products": res.Products,
		"Types":    res.Types,
	})
}
