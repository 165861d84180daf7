package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/pkg/logger"
)

const (
	relatedProductsLimit = 4
	storeCommentsLimit   = 5
	defaultStock         = 100
)

// CategorySection is one block of the storefront home page.
type CategorySection struct {
	Type     models.CategoryType
	Label    string
	Products []models.Product
}

// HomeView is everything the storefront home page shows.
type HomeView struct {
	Sections      []CategorySection
	Categories    []models.Category
	StoreComments []models.Comment
}

// ProductDetail is a product page.
type ProductDetail struct {
	Product  *models.Product
	Comments []models.Comment
	Related  []models.Product
}

// SearchResult is a search page.
type SearchResult struct {
	Query    string
	Type     models.CategoryType
	Products []models.Product
	Types    []models.CategoryType
}

// ProductInput is the product form shared by the JSON API and the edit page.
// Values stay raw so parsing errors can be reported in the storefront's words.
type ProductInput struct {
	Name        string `form:"nombre"`
	Description string `form:"descripcion"`
	Price       string `form:"precio"`
	Stock       string `form:"stock"`
	CategoryID  string `form:"categoria_id"`
}

// ProductService handles business logic related to the catalog.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	comments   repositories.CommentRepository
	images     ImageStore
	log        *logger.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, comments repositories.CommentRepository, images ImageStore, log *logger.Logger) *ProductService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductService{
		repo:       repo,
		categories: categories,
		comments:   comments,
		images:     images,
		log:        log,
	}
}

// Home groups the active catalog by category type.
func (s *ProductService) Home(ctx context.Context) (HomeView, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return HomeView{}, classify(err, "")
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return HomeView{}, classify(err, "")
	}
	comments, err := s.comments.ListApprovedStore(ctx, storeCommentsLimit)
	if err != nil {
		return HomeView{}, classify(err, "")
	}

	byType := make(map[models.CategoryType][]models.Product)
	for _, p := range products {
		t := p.CategoryType()
		byType[t] = append(byType[t], p)
	}
	var sections []CategorySection
	for _, t := range models.CategoryTypes {
		if len(byType[t]) == 0 {
			continue
		}
		sections = append(sections, CategorySection{Type: t, Label: t.Label(), Products: byType[t]})
	}

	return HomeView{Sections: sections, Categories: categories, StoreComments: comments}, nil
}

// Detail loads an active product with its visible comments and related
// products. viewer's own pending comments are included.
func (s *ProductService) Detail(ctx context.Context, viewer models.Actor, id uint) (ProductDetail, error) {
	product, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		return ProductDetail{}, classify(err, productNotFound)
	}
	comments, err := s.comments.ListForProduct(ctx, product.ID, viewer.UserID)
	if err != nil {
		return ProductDetail{}, classify(err, "")
	}

	var related []models.Product
	if product.CategoryID != nil {
		related, err = s.repo.ListRelatedActive(ctx, *product.CategoryID, product.ID, relatedProductsLimit)
		if err != nil {
			return ProductDetail{}, classify(err, "")
		}
	}
	return ProductDetail{Product: product, Comments: comments, Related: related}, nil
}

// Search finds active products by text and category type.
func (s *ProductService) Search(ctx context.Context, query, categoryType string) (SearchResult, error) {
	res := SearchResult{
		Query: strings.TrimSpace(query),
		Type:  models.CategoryType(strings.TrimSpace(categoryType)),
	}
	var err error
	res.Products, err = s.repo.SearchActive(ctx, repositories.ProductFilter{Query: res.Query, Type: res.Type})
	if err != nil {
		return SearchResult{}, classify(err, "")
	}
	res.Types, err = s.categories.ListTypes(ctx)
	if err != nil {
		return SearchResult{}, classify(err, "")
	}
	return res, nil
}

// Categories lists every category.
func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, classify(err, "")
	}
	return categories, nil
}

// GetProduct retrieves a single product, active or not.
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, productNotFound)
	}
	return product, nil
}

// ListAdmin lists active products for the back office, newest first.
func (s *ProductService) ListAdmin(ctx context.Context, actor models.Actor) ([]models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	products, err := s.repo.ListNewestActive(ctx, 0)
	if err != nil {
		return nil, classify(err, "")
	}
	return products, nil
}

// CreateProduct validates in, stores the optional image and inserts the
// product.
func (s *ProductService) CreateProduct(ctx context.Context, actor models.Actor, in ProductInput, image *multipart.FileHeader) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationError("El nombre es requerido")
	}
	if strings.TrimSpace(in.Price) == "" {
		return nil, validationError("El precio es requerido")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, validationError("El precio debe ser un número válido mayor a 0")
	}
	stock, err := parseStock(in.Stock)
	if err != nil {
		return nil, validationError("El stock debe ser un número válido")
	}
	category, err := s.lookupCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Stock:       stock,
		Active:      true,
	}
	if category != nil {
		product.CategoryID = &category.ID
		product.Category = category
	}

	if image != nil {
		product.Image, err = s.saveImage(image, category)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, classify(err, "")
	}
	s.log.Info().Uint("product_id", product.ID).Msg("product created")
	return product, nil
}

// UpdateProduct rewrites an existing product. An empty category keeps the
// current one and the image only changes when a file is uploaded.
func (s *ProductService) UpdateProduct(ctx context.Context, actor models.Actor, id uint, in ProductInput, image *multipart.FileHeader) (*models.Product, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.Price) == "" {
		return nil, validationError("Nombre y precio son requeridos")
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, validationError("Precio inválido")
	}
	stock, err := parseStock(in.Stock)
	if err != nil {
		return nil, validationError("Stock inválido")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err, productNotFound)
	}

	if strings.TrimSpace(in.CategoryID) != "" {
		category, err := s.lookupCategory(ctx, in.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = &category.ID
		product.Category = category
	}

	product.Name = name
	product.Description = strings.TrimSpace(in.Description)
	product.Price = price
	product.Stock = stock

	if image != nil {
		product.Image, err = s.saveImage(image, product.Category)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, classify(err, productNotFound)
	}
	s.log.Info().Uint("product_id", product.ID).Msg("product updated")
	return product, nil
}

// DeleteProduct deactivates a product. Past orders keep their snapshot.
func (s *ProductService) DeleteProduct(ctx context.Context, actor models.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return classify(err, productNotFound)
	}
	s.log.Info().Uint("product_id", id).Msg("product deactivated")
	return nil
}

func (s *ProductService) lookupCategory(ctx context.Context, raw string) (*models.Category, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, validationError("Categoría inválida")
	}
	category, err := s.categories.GetByID(ctx, uint(id))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, validationError("Categoría inválida")
	}
	if err != nil {
		return nil, classify(err, "")
	}
	return category, nil
}

func (s *ProductService) saveImage(image *multipart.FileHeader, category *models.Category) (string, error) {
	if s.images == nil {
		return "", validationError("La carga de imágenes no está disponible")
	}
	folder := ""
	if category != nil {
		folder = string(category.Type)
	}
	publicPath, err := s.images.Save(image, folder)
	if err != nil {
		return "", classify(err, "")
	}
	return publicPath, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	if !price.IsPositive() {
		return decimal.Zero, errors.New("price must be positive")
	}
	return price.Round(2), nil
}

func parseStock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultStock, nil
	}
	stock, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if stock < 0 {
		return 0, errors.New("stock must not be negative")
	}
	return stock, nil
}
