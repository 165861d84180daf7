package repositories

import (
	"context"

	"tienda/internal/models"
)

// ProductFilter narrows a catalog search. Empty fields do not filter.
type ProductFilter struct {
	Query string
	Type  models.CategoryType
}

// ProductRepository defines the interface for product data access. Methods
// named Active ignore deactivated products.
type ProductRepository interface {
	ListActive(ctx context.Context) ([]models.Product, error)
	SearchActive(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetActiveByID(ctx context.Context, id uint) (*models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	ListRelatedActive(ctx context.Context, categoryID, excludeID uint, limit int) ([]models.Product, error)
	ListNewestActive(ctx context.Context, limit int) ([]models.Product, error)
	CountActive(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Deactivate(ctx context.Context, id uint) error
}
