// Package catalog manages categories and the products filed under them.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services"
	"go.uber.org/zap"
)

// CategoryRequest creates or replaces a category
type CategoryRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	ImagePath string `json:"imagePath" validate:"max=255"`
	Rating    int    `json:"rating" validate:"gte=0,lte=10"`
}

// ProductRequest creates or replaces a product
type ProductRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Price       int64  `json:"price" validate:"gt=0"`
	CategoryID  string `json:"categoryId" validate:"required,uuid"`
	ImagePath   string `json:"imagePath" validate:"max=255"`
}

// Service implements category and product management
type Service struct {
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
	logger     *zap.Logger
}

// NewService creates a new catalog service
func NewService(categories repositories.CategoryRepository, products repositories.ProductRepository, logger *zap.Logger) *Service {
	return &Service{
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

// ListCategories returns all categories, best rated first
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return categories, nil
}

// GetCategory retrieves a category
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, categoryError(err)
	}
	return category, nil
}

// CreateCategory creates a category with a unique name
func (s *Service) CreateCategory(ctx context.Context, req CategoryRequest) (*models.Category, error) {
	category := models.NewCategory(req.Name, req.ImagePath, req.Rating)
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, categoryError(err)
	}

	s.logger.Info("category created", zap.String("category_id", category.ID.String()), zap.String("name", category.Name))
	return category, nil
}

// UpdateCategory replaces the fields of a category
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req CategoryRequest) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, categoryError(err)
	}

	category.Name = req.Name
	category.ImagePath = req.ImagePath
	category.Rating = req.Rating
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, categoryError(err)
	}
	return category, nil
}

// DeleteCategory deletes an empty category
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return categoryError(err)
	}

	s.logger.Info("category deleted", zap.String("category_id", id.String()))
	return nil
}

// ListProducts returns one page of all products
func (s *Service) ListProducts(ctx context.Context, page repositories.Page) ([]*models.Product, error) {
	page, err := services.NormalizePage(page, repositories.ProductSortFields, "id")
	if err != nil {
		return nil, err
	}

	products, err := s.products.List(ctx, page)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return products, nil
}

// ListProductsByCategory returns one page of the products of a category
func (s *Service) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, page repositories.Page) ([]*models.Product, error) {
	page, err := services.NormalizePage(page, repositories.ProductSortFields, "id")
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, categoryError(err)
	}

	products, err := s.products.ListByCategory(ctx, categoryID, page)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return products, nil
}

// SearchProducts returns one page of the products matching filter, sorted by name by default
func (s *Service) SearchProducts(ctx context.Context, filter models.ProductSearch, page repositories.Page) ([]*models.Product, error) {
	page, err := services.NormalizePage(page, repositories.ProductSortFields, "name")
	if err != nil {
		return nil, err
	}
	if filter.PriceFrom > 0 && filter.PriceTo > 0 && filter.PriceFrom > filter.PriceTo {
		return nil, services.ErrInvalidInput.WithDetail("priceFrom", "must not exceed priceTo")
	}

	products, err := s.products.Search(ctx, filter, page)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return products, nil
}

// GetProduct retrieves a product
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}
	return product, nil
}

// CreateProduct creates a product in an existing category
func (s *Service) CreateProduct(ctx context.Context, req ProductRequest) (*models.Product, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, services.ErrInvalidInput.WithDetail("categoryId", "must be a valid UUID")
	}

	product := models.NewProduct(req.Name, req.Description, req.Price, categoryID, req.ImagePath)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, productError(err)
	}

	s.logger.Info("product created", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct replaces the fields of a product
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest) (*models.Product, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, services.ErrInvalidInput.WithDetail("categoryId", "must be a valid UUID")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, productError(err)
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Price = req.Price
	product.CategoryID = categoryID
	product.ImagePath = req.ImagePath
	if err := s.products.Update(ctx, product); err != nil {
		return nil, productError(err)
	}
	return product, nil
}

// DeleteProduct deletes a product. Existing orders keep their item snapshots.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return productError(err)
	}

	s.logger.Info("product deleted", zap.String("product_id", id.String()))
	return nil
}

func categoryError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return services.ErrCategoryNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		return services.ErrDuplicateCategory
	case errors.Is(err, repositories.ErrReferenced):
		return services.ErrCategoryInUse
	}
	return services.ErrDatabaseError.Wrap(err)
}

// productError maps repository errors of product writes. A foreign key
// violation there can only mean the category does not exist.
func productError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return services.ErrProductNotFound
	case errors.Is(err, repositories.ErrReferenced):
		return services.ErrCategoryNotFound
	}
	return services.ErrDatabaseError.Wrap(err)
}
