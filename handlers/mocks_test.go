package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/upb/webshop/middleware"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services/auth"
	"github.com/upb/webshop/services/catalog"
	"github.com/upb/webshop/services/users"
)

// newRequest builds a request with optional JSON body and chi URL params
func newRequest(method, target, body string, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func asPrincipal(req *http.Request, subject string, roles ...string) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), &auth.Principal{Subject: subject, Roles: roles}))
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) pair(args mock.Arguments) (*auth.TokenPair, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenPair), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, creds auth.Credentials) (*auth.TokenPair, error) {
	return m.pair(m.Called(ctx, creds))
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	return m.pair(m.Called(ctx, refreshToken))
}

func (m *MockAuthService) RotateRefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	return m.pair(m.Called(ctx, refreshToken))
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func userResult(args mock.Arguments) (*models.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Register(ctx context.Context, req users.CreateUserRequest) (*models.User, error) {
	return userResult(m.Called(ctx, req))
}

func (m *MockUserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return userResult(m.Called(ctx, id))
}

func (m *MockUserService) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	return userResult(m.Called(ctx, subject))
}

func (m *MockUserService) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserService) UpdateContact(ctx context.Context, id uuid.UUID, req users.UpdateContactRequest) (*models.User, error) {
	return userResult(m.Called(ctx, id, req))
}

func (m *MockUserService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	mock.Mock
}

func categoryResult(args mock.Arguments) (*models.Category, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func productResult(args mock.Arguments) (*models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func productsResult(args mock.Arguments) ([]*models.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return categoryResult(m.Called(ctx, id))
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, req catalog.CategoryRequest) (*models.Category, error) {
	return categoryResult(m.Called(ctx, req))
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req catalog.CategoryRequest) (*models.Category, error) {
	return categoryResult(m.Called(ctx, id, req))
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, page repositories.Page) ([]*models.Product, error) {
	return productsResult(m.Called(ctx, page))
}

func (m *MockCatalogService) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID, page repositories.Page) ([]*models.Product, error) {
	return productsResult(m.Called(ctx, categoryID, page))
}

func (m *MockCatalogService) SearchProducts(ctx context.Context, filter models.ProductSearch, page repositories.Page) ([]*models.Product, error) {
	return productsResult(m.Called(ctx, filter, page))
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return productResult(m.Called(ctx, id))
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, req catalog.ProductRequest) (*models.Product, error) {
	return productResult(m.Called(ctx, req))
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req catalog.ProductRequest) (*models.Product, error) {
	return productResult(m.Called(ctx, id, req))
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockCartService is a mock implementation of CartService
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(subject string) models.CartView {
	return m.Called(subject).Get(0).(models.CartView)
}

func (m *MockCartService) Add(ctx context.Context, subject string, productID uuid.UUID) (models.CartView, error) {
	args := m.Called(ctx, subject, productID)
	return args.Get(0).(models.CartView), args.Error(1)
}

func (m *MockCartService) Remove(subject string, productID uuid.UUID) (models.CartView, error) {
	args := m.Called(subject, productID)
	return args.Get(0).(models.CartView), args.Error(1)
}

func (m *MockCartService) Clear(subject string) {
	m.Called(subject)
}

// MockOrderService is a mock implementation of OrderService
type MockOrderService struct {
	mock.Mock
}

func orderResult(args mock.Arguments) (*models.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) Create(ctx context.Context, principal *auth.Principal) (*models.Order, error) {
	return orderResult(m.Called(ctx, principal))
}

func (m *MockOrderService) Get(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*models.Order, error) {
	return orderResult(m.Called(ctx, principal, id))
}

func (m *MockOrderService) Items(ctx context.Context, principal *auth.Principal, id uuid.UUID) ([]*models.OrderItem, error) {
	args := m.Called(ctx, principal, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderItem), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, principal *auth.Principal, userID uuid.UUID, page repositories.Page) ([]*models.Order, error) {
	args := m.Called(ctx, principal, userID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	return orderResult(m.Called(ctx, id, status))
}

func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}
