package handlers

import (
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"

	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/services"
)

// ProductHandler handles the product JSON API.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product API routes. Reads are public, writes
// need the admin role.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	api := router.Group("/api")
	api.Get("/categorias", h.HandleCategories)
	api.Get("/productos/:id", h.HandleGetProduct)

	gate := middleware.RequireAdminAPI()
	api.Post("/productos", gate, h.HandleCreateProduct)
	api.Put("/productos/:id", gate, h.HandleUpdateProduct)
	api.Delete("/productos/:id", gate, h.HandleDeleteProduct)
}

type categoryJSON struct {
	ID   uint   `json:"id"`
	Name string `json:"nombre"`
	Type string `json:"tipo"`
}

type productJSON struct {
	ID           uint       `json:"id"`
	Name         string     `json:"nombre"`
	Description  string     `json:"descripcion"`
	Price        float64    `json:"precio"`
	Stock        int        `json:"stock"`
	CategoryID   *uint      `json:"categoria_id"`
	CategoryName string     `json:"categoria_nombre,omitempty"`
	CategoryType string     `json:"categoria_tipo,omitempty"`
	Image        string     `json:"imagen"`
	Active       bool       `json:"activo"`
	CreatedAt    *time.Time `json:"fecha_creacion,omitempty"`
}

func toProductJSON(p *models.Product, withCategory bool) productJSON {
	price, _ := p.Price.Float64()
	out := productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		Image:       p.Image,
		Active:      p.Active,
	}
	if withCategory {
		if p.Category != nil {
			out.CategoryName = p.Category.Name
			out.CategoryType = string(p.Category.Type)
		}
		created := p.CreatedAt
		out.CreatedAt = &created
	}
	return out
}

func uploadedImage(c *fiber.Ctx) *multipart.FileHeader {
	file, err := c.FormFile("imagen")
	if err != nil || file.Filename == "" {
		return nil
	}
	return file
}

// HandleCategories lists every category.
func (h *ProductHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.UserContext())
	if err != nil {
		return jsonFail(c, err, "error")
	}
	out := make([]categoryJSON, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryJSON{ID: cat.ID, Name: cat.Name, Type: string(cat.Type)})
	}
	return c.JSON(fiber.Map{"success": true, "categorias": out})
}

// HandleGetProduct returns a product, including deactivated ones.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Producto no encontrado"})
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return jsonFail(c, err, "error")
	}
	return c.JSON(fiber.Map{"success": true, "producto": toProductJSON(product, false)})
}

// HandleCreateProduct creates a product from a multipart form.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Datos inválidos"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), middleware.ActorFrom(c), in, uploadedImage(c))
	if err != nil {
		return jsonFail(c, err, "error")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Producto creado exitosamente",
		"producto": toProductJSON(product, true),
	})
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Producto no encontrado"})
	}
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Datos inválidos"})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), middleware.ActorFrom(c), id, in, uploadedImage(c))
	if err != nil {
		return jsonFail(c, err, "error")
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Producto actualizado exitosamente",
		"producto": toProductJSON(product, true),
	})
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Producto no encontrado"})
	}
	if err := h.service.DeleteProduct(c.UserContext(), middleware.ActorFrom(c), id); err != nil {
		return jsonFail(c, err, "error")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Producto eliminado exitosamente"})
}
