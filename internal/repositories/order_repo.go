package repositories

import (
	"context"
	"time"

	"tienda/internal/models"
)

// OrderFilter narrows the admin order listing. Zero fields do not filter;
// From is inclusive and To exclusive.
type OrderFilter struct {
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
	From          *time.Time
	To            *time.Time
	Limit         int
}

// OrderRepository defines the interface for order data access. Orders are
// never deleted.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error
}
