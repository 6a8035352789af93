package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services"
	"github.com/upb/webshop/services/catalog"
	"go.uber.org/zap"
)

func TestCatalogHandler_Categories(t *testing.T) {
	logger := zap.NewNop()
	id := uuid.New()
	params := map[string]string{"id": id.String()}

	t.Run("list", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		svc.On("ListCategories", mock.Anything).Return([]*models.Category{{ID: id, Name: "Books"}}, nil)

		w := httptest.NewRecorder()
		handler.ListCategories(w, newRequest(http.MethodGet, "/api/v1/categories", "", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Books")
	})

	t.Run("get missing", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		svc.On("GetCategory", mock.Anything, id).Return(nil, services.ErrCategoryNotFound)

		w := httptest.NewRecorder()
		handler.GetCategory(w, newRequest(http.MethodGet, "/", "", params))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("create", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		want := catalog.CategoryRequest{Name: "Books", Rating: 4}
		svc.On("CreateCategory", mock.Anything, want).Return(&models.Category{ID: id, Name: "Books", Rating: 4}, nil)

		w := httptest.NewRecorder()
		handler.CreateCategory(w, newRequest(http.MethodPost, "/", `{"name":"Books","rating":4}`, nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("create rejects out of range rating", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)

		w := httptest.NewRecorder()
		handler.CreateCategory(w, newRequest(http.MethodPost, "/", `{"name":"Books","rating":11}`, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "rating")
	})

	t.Run("update duplicate", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		svc.On("UpdateCategory", mock.Anything, id, mock.Anything).Return(nil, services.ErrDuplicateCategory)

		w := httptest.NewRecorder()
		handler.UpdateCategory(w, newRequest(http.MethodPut, "/", `{"name":"Books"}`, params))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete in use", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		svc.On("DeleteCategory", mock.Anything, id).Return(services.ErrCategoryInUse)

		w := httptest.NewRecorder()
		handler.DeleteCategory(w, newRequest(http.MethodDelete, "/", "", params))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestCatalogHandler_ListProducts(t *testing.T) {
	logger := zap.NewNop()

	t.Run("passes paging parameters through", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		page := repositories.Page{Number: 2, Size: 5, Sort: "price"}
		svc.On("ListProducts", mock.Anything, page).Return([]*models.Product{}, nil)

		w := httptest.NewRecorder()
		handler.ListProducts(w, newRequest(http.MethodGet, "/api/v1/products?pageNumber=2&pageSize=5&sort=price", "", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("non numeric page", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)

		w := httptest.NewRecorder()
		handler.ListProducts(w, newRequest(http.MethodGet, "/api/v1/products?pageNumber=x", "", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything)
	})

	t.Run("unknown sort field", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		svc.On("ListProducts", mock.Anything, mock.Anything).
			Return(nil, services.ErrInvalidSortField.WithDetail("sort", "rating"))

		w := httptest.NewRecorder()
		handler.ListProducts(w, newRequest(http.MethodGet, "/api/v1/products?sort=rating", "", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid sort field")
	})

	t.Run("by category", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		categoryID := uuid.New()
		svc.On("ListProductsByCategory", mock.Anything, categoryID, repositories.Page{}).Return(nil, services.ErrCategoryNotFound)

		w := httptest.NewRecorder()
		handler.ListProductsByCategory(w, newRequest(http.MethodGet, "/", "", map[string]string{"id": categoryID.String()}))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCatalogHandler_SearchProducts(t *testing.T) {
	logger := zap.NewNop()

	t.Run("decodes filter and page", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)

		filter := models.ProductSearch{SearchKey: "lamp", PriceFrom: 100, CategoryName: "Home"}
		page := repositories.Page{Size: 20}
		svc.On("SearchProducts", mock.Anything, filter, page).Return([]*models.Product{{Name: "Desk lamp", Price: 150}}, nil)

		req := newRequest(http.MethodPost, "/api/v1/products/search?pageSize=20",
			`{"searchKey":"lamp","priceFrom":100,"categoryName":"Home"}`, nil)
		w := httptest.NewRecorder()
		handler.SearchProducts(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Desk lamp")
		svc.AssertExpectations(t)
	})

	t.Run("negative price", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)

		w := httptest.NewRecorder()
		handler.SearchProducts(w, newRequest(http.MethodPost, "/api/v1/products/search", `{"priceTo":-1}`, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCatalogHandler_ProductMutations(t *testing.T) {
	logger := zap.NewNop()
	id := uuid.New()
	categoryID := uuid.New()
	params := map[string]string{"id": id.String()}
	body := `{"name":"Lamp","price":1500,"categoryId":"` + categoryID.String() + `"}`

	t.Run("create", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		want := catalog.ProductRequest{Name: "Lamp", Price: 1500, CategoryID: categoryID.String()}
		svc.On("CreateProduct", mock.Anything, want).Return(&models.Product{ID: id, Name: "Lamp", Price: 1500, CategoryID: categoryID}, nil)

		w := httptest.NewRecorder()
		handler.CreateProduct(w, newRequest(http.MethodPost, "/", body, nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("create requires positive price", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)

		w := httptest.NewRecorder()
		handler.CreateProduct(w, newRequest(http.MethodPost, "/",
			`{"name":"Lamp","price":0,"categoryId":"`+categoryID.String()+`"}`, nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "price")
	})

	t.Run("update missing product", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		svc.On("UpdateProduct", mock.Anything, id, mock.Anything).Return(nil, services.ErrProductNotFound)

		w := httptest.NewRecorder()
		handler.UpdateProduct(w, newRequest(http.MethodPut, "/", body, params))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("get", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		svc.On("GetProduct", mock.Anything, id).Return(&models.Product{ID: id, Name: "Lamp"}, nil)

		w := httptest.NewRecorder()
		handler.GetProduct(w, newRequest(http.MethodGet, "/", "", params))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		svc := new(MockCatalogService)
		handler := NewCatalogHandler(svc, logger)
		svc.On("DeleteProduct", mock.Anything, id).Return(nil)

		w := httptest.NewRecorder()
		handler.DeleteProduct(w, newRequest(http.MethodDelete, "/", "", params))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
