package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/webshop/middleware"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services/catalog"
	"github.com/upb/webshop/utils"
	"go.uber.org/zap"
)

// CatalogService manages categories and products
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, req catalog.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req catalog.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, page repositories.Page) ([]*models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, page repositories.Page) ([]*models.Product, error)
	SearchProducts(ctx context.Context, filter models.ProductSearch, page repositories.Page) ([]*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, req catalog.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req catalog.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CatalogHandler handles category and product endpoints
type CatalogHandler struct {
	catalog CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListCategories handles GET /api/v1/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, categories)
}

// GetCategory handles GET /api/v1/categories/{id}
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	category, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, category)
}

// CreateCategory handles POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req catalog.CategoryRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	category, err := h.catalog.CreateCategory(ctx, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("category created",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("category_id", category.ID.String()))

	_ = utils.WriteCreated(w, category)
}

// UpdateCategory handles PUT /api/v1/categories/{id}
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req catalog.CategoryRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	category, err := h.catalog.UpdateCategory(r.Context(), id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, category)
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, ok := pageQuery(w, r)
	if !ok {
		return
	}

	products, err := h.catalog.ListProducts(r.Context(), page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, products)
}

// ListProductsByCategory handles GET /api/v1/products/category/{id}
func (h *CatalogHandler) ListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	page, ok := pageQuery(w, r)
	if !ok {
		return
	}

	products, err := h.catalog.ListProductsByCategory(r.Context(), id, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, products)
}

// SearchProducts handles POST /api/v1/products/search
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	page, ok := pageQuery(w, r)
	if !ok {
		return
	}

	var filter models.ProductSearch
	if !decodeAndValidate(w, r, &filter, h.logger) {
		return
	}

	products, err := h.catalog.SearchProducts(r.Context(), filter, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, products)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, product)
}

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req catalog.ProductRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	product, err := h.catalog.CreateProduct(ctx, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("product created",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("product_id", product.ID.String()))

	_ = utils.WriteCreated(w, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req catalog.ProductRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	product, err := h.catalog.UpdateProduct(r.Context(), id, req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, product)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
