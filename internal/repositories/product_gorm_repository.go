package repositories

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tienda/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

func (r *GORMProductRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Joins("Category").Where("products.active = ?", true)
}

// ListActive returns active products ordered by category type, category name and product name.
func (r *GORMProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.active(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Category", Name: "type"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Category", Name: "name"}}).
		Order("products.name").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "failed to list products")
	}
	return products, nil
}

// SearchActive matches the query against name or description, case-insensitively.
func (r *GORMProductRepository) SearchActive(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.active(ctx)
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where(`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.description) LIKE ? ESCAPE '\')`, like, like)
	}
	if filter.Type != "" {
		q = q.Where(clause.Eq{Column: clause.Column{Table: "Category", Name: "type"}, Value: filter.Type})
	}

	var products []models.Product
	if err := q.Order("products.name").Find(&products).Error; err != nil {
		return nil, translate(err, "failed to search products")
	}
	return products, nil
}

// GetActiveByID retrieves an active product with its category.
func (r *GORMProductRepository) GetActiveByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.active(ctx).First(&product, "products.id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("product with ID %d", id))
	}
	return &product, nil
}

// GetByID retrieves a product regardless of its active flag.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Joins("Category").First(&product, "products.id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("product with ID %d", id))
	}
	return &product, nil
}

func (r *GORMProductRepository) ListRelatedActive(ctx context.Context, categoryID, excludeID uint, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.active(ctx).
		Where("products.category_id = ? AND products.id <> ?", categoryID, excludeID).
		Order("products.id").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "failed to list related products")
	}
	return products, nil
}

// ListNewestActive returns active products, newest first. limit <= 0 returns all.
func (r *GORMProductRepository) ListNewestActive(ctx context.Context, limit int) ([]models.Product, error) {
	q := r.active(ctx).Order("products.created_at DESC").Order("products.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, translate(err, "failed to list products")
	}
	return products, nil
}

func (r *GORMProductRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("active = ?", true).Count(&n).Error; err != nil {
		return 0, translate(err, "failed to count products")
	}
	return n, nil
}

// Create inserts a product without touching its category row.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return translate(err, "failed to create product")
	}
	return nil
}

// Update saves every editable column of product.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", product.ID).
		Select("name", "description", "price", "stock", "category_id", "image", "active").
		Updates(map[string]any{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"stock":       product.Stock,
			"category_id": product.CategoryID,
			"image":       product.Image,
			"active":      product.Active,
		})
	if res.Error != nil {
		return translate(res.Error, "failed to update product")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Deactivate soft-deletes a product.
func (r *GORMProductRepository) Deactivate(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return translate(res.Error, "failed to deactivate product")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
