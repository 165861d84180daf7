package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tienda/internal/models"
)

// CategoryRepository defines read access to categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	ListTypes(ctx context.Context) ([]models.CategoryType, error)
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// List returns all categories ordered by type and name.
func (r *GORMCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("type, name").Find(&categories).Error; err != nil {
		return nil, translate(err, "failed to list categories")
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("category with ID %d", id))
	}
	return &category, nil
}

// ListTypes returns the distinct category types in use.
func (r *GORMCategoryRepository) ListTypes(ctx context.Context) ([]models.CategoryType, error) {
	var types []models.CategoryType
	err := r.db.WithContext(ctx).Model(&models.Category{}).Distinct("type").Order("type").Pluck("type", &types).Error
	if err != nil {
		return nil, translate(err, "failed to list category types")
	}
	return types, nil
}
