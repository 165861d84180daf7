package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tienda/internal/models"
)

// CartRepository defines access to cart lines. Every owner-scoped method
// matches nothing for a zero owner.
type CartRepository interface {
	ListByOwner(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error)
	FindByOwnerAndProduct(ctx context.Context, owner models.CartOwner, productID uint) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	AddQuantity(ctx context.Context, id uint, delta int) error
	SetQuantity(ctx context.Context, owner models.CartOwner, id uint, quantity int) (bool, error)
	DeleteOwned(ctx context.Context, owner models.CartOwner, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
	AssignToUser(ctx context.Context, id, userID uint) error
	ClearOwner(ctx context.Context, owner models.CartOwner) (int64, error)
	CountQuantity(ctx context.Context, owner models.CartOwner) (int, error)
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

// ownedBy scopes a query to owner's rows. Guest rows must not belong to a user.
func ownedBy(owner models.CartOwner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case owner.UserID != 0:
			return db.Where("cart_items.user_id = ?", owner.UserID)
		case owner.SessionID != "":
			return db.Where("cart_items.session_id = ? AND cart_items.user_id IS NULL", owner.SessionID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// ListByOwner returns owner's lines with their products, newest first.
func (r *GORMCartRepository) ListByOwner(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Preload("Product").
		Order("cart_items.created_at DESC").
		Order("cart_items.id DESC").
		Find(&items).Error
	if err != nil {
		return nil, translate(err, "failed to list cart items")
	}
	return items, nil
}

func (r *GORMCartRepository) FindByOwnerAndProduct(ctx context.Context, owner models.CartOwner, productID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where("cart_items.product_id = ?", productID).
		First(&item).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("cart item for product %d", productID))
	}
	return &item, nil
}

// Create inserts a line. A second line for the same owner and product yields ErrDuplicate.
func (r *GORMCartRepository) Create(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return translate(err, "failed to create cart item")
	}
	return nil
}

// AddQuantity increments a line's quantity in a single statement.
func (r *GORMCartRepository) AddQuantity(ctx context.Context, id uint, delta int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return translate(res.Error, "failed to update cart item")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetQuantity overwrites the quantity of one of owner's lines and reports
// whether a row matched.
func (r *GORMCartRepository) SetQuantity(ctx context.Context, owner models.CartOwner, id uint, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Scopes(ownedBy(owner)).
		Where("cart_items.id = ?", id).
		Update("quantity", quantity)
	if res.Error != nil {
		return false, translate(res.Error, "failed to update cart item")
	}
	return res.RowsAffected > 0, nil
}

// DeleteOwned removes one of owner's lines and reports whether a row matched.
func (r *GORMCartRepository) DeleteOwned(ctx context.Context, owner models.CartOwner, id uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where("cart_items.id = ?", id).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, translate(res.Error, "failed to delete cart item")
	}
	return res.RowsAffected > 0, nil
}

func (r *GORMCartRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.CartItem{}, id).Error; err != nil {
		return translate(err, "failed to delete cart item")
	}
	return nil
}

// AssignToUser moves a guest line to userID and clears its session id.
func (r *GORMCartRepository) AssignToUser(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", id).
		Updates(map[string]any{"user_id": userID, "session_id": nil})
	if res.Error != nil {
		return translate(res.Error, "failed to reassign cart item")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %d: %w", id, ErrNotFound)
	}
	return nil
}

// ClearOwner deletes all of owner's lines.
func (r *GORMCartRepository) ClearOwner(ctx context.Context, owner models.CartOwner) (int64, error) {
	res := r.db.WithContext(ctx).Scopes(ownedBy(owner)).Delete(&models.CartItem{})
	if res.Error != nil {
		return 0, translate(res.Error, "failed to clear cart")
	}
	return res.RowsAffected, nil
}

// CountQuantity sums the quantities of owner's lines.
func (r *GORMCartRepository) CountQuantity(ctx context.Context, owner models.CartOwner) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Scopes(ownedBy(owner)).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, translate(err, "failed to count cart items")
	}
	return total, nil
}
