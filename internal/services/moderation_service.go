package services

import (
	"context"
	"strconv"
	"strings"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/validation"
	pkgerrors "tienda/pkg/errors"
	"tienda/pkg/logger"
	"tienda/pkg/metrics"
)

// CommentInput is the comment form. ProductID is ignored for store comments.
type CommentInput struct {
	ProductID string `form:"producto_id"`
	Rating    string `form:"calificacion"`
	Body      string `form:"comentario"`
}

// ModerationService accepts user comments and lets admins review them.
type ModerationService struct {
	comments repositories.CommentRepository
	products repositories.ProductRepository
	metrics  *metrics.StoreMetrics
	log      *logger.Logger
}

func NewModerationService(comments repositories.CommentRepository, products repositories.ProductRepository, m *metrics.StoreMetrics, log *logger.Logger) *ModerationService {
	if log == nil {
		log = logger.Nop()
	}
	return &ModerationService{comments: comments, products: products, metrics: m, log: log}
}

// AddProductComment stores a review of an active product.
func (s *ModerationService) AddProductComment(ctx context.Context, actor models.Actor, in CommentInput) (*models.Comment, error) {
	if !actor.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Debes iniciar sesión para comentar")
	}
	rating, body, err := parseComment(in)
	if err != nil {
		return nil, err
	}

	id, err := strconv.ParseUint(strings.TrimSpace(in.ProductID), 10, 64)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, productNotFound)
	}
	product, err := s.products.GetActiveByID(ctx, uint(id))
	if err != nil {
		return nil, classify(err, productNotFound)
	}

	return s.create(ctx, &models.Comment{
		UserID:    actor.UserID,
		ProductID: &product.ID,
		Rating:    rating,
		Body:      body,
		Approved:  models.AutoApproves(rating),
	})
}

// AddStoreComment stores a review of the store itself.
func (s *ModerationService) AddStoreComment(ctx context.Context, actor models.Actor, in CommentInput) (*models.Comment, error) {
	if !actor.IsAuthenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Debes iniciar sesión")
	}
	rating, body, err := parseComment(in)
	if err != nil {
		return nil, err
	}

	return s.create(ctx, &models.Comment{
		UserID:   actor.UserID,
		Rating:   rating,
		Body:     body,
		Approved: models.AutoApproves(rating),
	})
}

func (s *ModerationService) create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, classify(err, "")
	}
	s.metrics.IncComment(comment.Approved)
	s.log.Debug().Uint("comment_id", comment.ID).Bool("approved", comment.Approved).Msg("comment stored")
	return comment, nil
}

func parseComment(in CommentInput) (int, string, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(in.Rating))
	if err != nil || rating < 1 || rating > 5 {
		return 0, "", validationError("Calificación inválida")
	}
	body, err := validation.SanitizeComment(in.Body)
	if err != nil {
		return 0, "", err
	}
	return rating, body, nil
}

// Pending lists comments awaiting moderation.
func (s *ModerationService) Pending(ctx context.Context, actor models.Actor) ([]models.Comment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListPending(ctx)
	if err != nil {
		return nil, classify(err, "")
	}
	return comments, nil
}

// Approve publishes a pending comment.
func (s *ModerationService) Approve(ctx context.Context, actor models.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.comments.Approve(ctx, id); err != nil {
		return classify(err, "Comentario no encontrado")
	}
	s.log.Info().Uint("comment_id", id).Msg("comment approved")
	return nil
}

// Reject deletes a pending comment.
func (s *ModerationService) Reject(ctx context.Context, actor models.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.comments.DeletePending(ctx, id); err != nil {
		return classify(err, "Comentario no encontrado")
	}
	s.log.Info().Uint("comment_id", id).Msg("comment rejected")
	return nil
}
