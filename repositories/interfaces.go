package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/webshop/models"
)

var (
	// ErrNotFound is wrapped by repositories when a row does not exist
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is wrapped when a unique constraint is violated
	ErrDuplicate = errors.New("duplicate record")

	// ErrReferenced is wrapped when a row is still referenced by another table
	ErrReferenced = errors.New("record is still referenced")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns a context bound to the transaction.
	// Repositories called with it run their statements inside the transaction.
	Context() context.Context
}

// Page selects a window of a sorted result set. Number is zero-based.
type Page struct {
	Number int
	Size   int
	Sort   string
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return p.Number * p.Size
}

// Sortable columns per listing
var (
	ProductSortFields = []string{"id", "name", "price", "created_at"}
	OrderSortFields   = []string{"id", "price", "status", "created_at"}
)

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves all users ordered by creation time
	List(ctx context.Context) ([]*models.User, error)

	// UpdateContact updates the address and phone number of a user
	UpdateContact(ctx context.Context, user *models.User) error

	// UpdateRoles replaces the roles of a user
	UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) error

	// Delete deletes a user
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository handles category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository handles product data operations
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *models.Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)

	// List retrieves one page of all products
	List(ctx context.Context, page Page) ([]*models.Product, error)

	// ListByCategory retrieves one page of the products of a category
	ListByCategory(ctx context.Context, categoryID uuid.UUID, page Page) ([]*models.Product, error)

	// Search retrieves one page of the products matching the filter
	Search(ctx context.Context, filter models.ProductSearch, page Page) ([]*models.Product, error)

	// Update updates a product
	Update(ctx context.Context, product *models.Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository handles order data operations
type OrderRepository interface {
	// Create inserts an order with its items
	Create(ctx context.Context, order *models.Order) error

	// GetByID retrieves an order with its items
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)

	// ListByUser retrieves one page of the orders of a user, without items
	ListByUser(ctx context.Context, userID uuid.UUID, page Page) ([]*models.Order, error)

	// UpdateStatus sets the status of an order
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error

	// Delete deletes an order and its items
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users      UserRepository
	Categories CategoryRepository
	Products   ProductRepository
	Orders     OrderRepository
}
