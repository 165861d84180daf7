package handlers

import (
	"github.com/gofiber/fiber/v2"

	"tienda/internal/middleware"
	"tienda/internal/services"
	pkgerrors "tienda/pkg/errors"
)

// CommentHandler accepts product and store reviews.
type CommentHandler struct {
	service *services.ModerationService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service *services.ModerationService) *CommentHandler {
	return &CommentHandler{service: service}
}

// RegisterRoutes registers the comment routes with the Fiber app.
func (h *CommentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/agregar_comentario", h.HandleProductComment)
	router.Post("/agregar_comentario_tienda", h.HandleStoreComment)
}

// HandleProductComment stores a product review. Failures answer 200 with
// success false, like the other storefront JSON endpoints.
func (h *CommentHandler) HandleProductComment(c *fiber.Ctx) error {
	var in services.CommentInput
	if err := c.BodyParser(&in); err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Faltan datos"})
	}
	comment, err := h.service.AddProductComment(c.UserContext(), middleware.ActorFrom(c), in)
	if err != nil {
		return commentFail(c, err)
	}

	message := "Comentario enviado para moderación"
	if comment.Approved {
		message = "Comentario agregado"
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}

// HandleStoreComment stores a review of the store.
func (h *CommentHandler) HandleStoreComment(c *fiber.Ctx) error {
	var in services.CommentInput
	if err := c.BodyParser(&in); err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Faltan datos"})
	}
	if _, err := h.service.AddStoreComment(c.UserContext(), middleware.ActorFrom(c), in); err != nil {
		return commentFail(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Comentario sobre la tienda enviado"})
}

func commentFail(c *fiber.Ctx, err error) error {
	if pkgerrors.CodeOf(err) == pkgerrors.CodeInternal {
		return err
	}
	return c.JSON(fiber.Map{"success": false, "message": pkgerrors.PublicMessage(err)})
}
