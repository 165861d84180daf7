package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tienda/internal/models"
)

// CommentRepository defines access to product and store comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListApprovedStore(ctx context.Context, limit int) ([]models.Comment, error)
	ListForProduct(ctx context.Context, productID, viewerID uint) ([]models.Comment, error)
	ListPending(ctx context.Context) ([]models.Comment, error)
	CountPending(ctx context.Context) (int64, error)
	Approve(ctx context.Context, id uint) error
	DeletePending(ctx context.Context, id uint) error
}

// GORMCommentRepository is a GORM implementation of CommentRepository.
type GORMCommentRepository struct {
	db *gorm.DB
}

func NewGORMCommentRepository(db *gorm.DB) *GORMCommentRepository {
	return &GORMCommentRepository{db: db}
}

func (r *GORMCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return translate(err, "failed to create comment")
	}
	return nil
}

// ListApprovedStore returns the newest approved store-level comments.
func (r *GORMCommentRepository) ListApprovedStore(ctx context.Context, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Joins("User").
		Where("comments.approved = ? AND comments.product_id IS NULL", true).
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "failed to list store comments")
	}
	return comments, nil
}

// ListForProduct returns approved comments plus the viewer's own pending ones.
// A zero viewerID returns approved comments only.
func (r *GORMCommentRepository) ListForProduct(ctx context.Context, productID, viewerID uint) ([]models.Comment, error) {
	q := r.db.WithContext(ctx).Joins("User").Where("comments.product_id = ?", productID)
	if viewerID != 0 {
		q = q.Where("(comments.approved = ? OR comments.user_id = ?)", true, viewerID)
	} else {
		q = q.Where("comments.approved = ?", true)
	}

	var comments []models.Comment
	if err := q.Order("comments.created_at DESC").Order("comments.id DESC").Find(&comments).Error; err != nil {
		return nil, translate(err, "failed to list product comments")
	}
	return comments, nil
}

// ListPending returns unapproved comments with author and product, newest first.
func (r *GORMCommentRepository) ListPending(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Joins("User").
		Joins("Product").
		Where("comments.approved = ?", false).
		Order("comments.created_at DESC").
		Order("comments.id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, translate(err, "failed to list pending comments")
	}
	return comments, nil
}

func (r *GORMCommentRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("approved = ?", false).Count(&n).Error; err != nil {
		return 0, translate(err, "failed to count pending comments")
	}
	return n, nil
}

// Approve publishes a comment.
func (r *GORMCommentRepository) Approve(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("approved", true)
	if res.Error != nil {
		return translate(res.Error, "failed to approve comment")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeletePending removes a comment that is still awaiting moderation.
func (r *GORMCommentRepository) DeletePending(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND approved = ?", id, false).Delete(&models.Comment{})
	if res.Error != nil {
		return translate(res.Error, "failed to delete comment")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pending comment with ID %d: %w", id, ErrNotFound)
	}
	return nil
}
