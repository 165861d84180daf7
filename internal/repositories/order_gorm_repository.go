package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tienda/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return translate(err, "failed to create order")
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("order with ID %d", id))
	}
	return &order, nil
}

// List returns matching orders, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		q = q.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", filter.To.UTC())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var orders []models.Order
	if err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, translate(err, "failed to list orders")
	}
	return orders, nil
}

func (r *GORMOrderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&n).Error; err != nil {
		return 0, translate(err, "failed to count orders")
	}
	return n, nil
}

// UpdateStatus sets the status of one order, returning ErrNotFound when it does not exist.
func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return translate(res.Error, "failed to update order status")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %d: %w", id, ErrNotFound)
	}
	return nil
}
