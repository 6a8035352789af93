package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"go.uber.org/zap"
)

const productColumns = `p.id, p.name, p.description, p.price, p.category_id, p.image_path, p.created_at, p.updated_at`

// ProductRepository implements the repositories.ProductRepository interface
type ProductRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB, logger *zap.Logger) repositories.ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: logger,
	}
}

func scanProduct(row rowScanner) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.CategoryID,
		&product.ImagePath,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

// orderBy renders the ORDER BY clause. Unknown keys fall back to def;
// services validate sort keys before they get here.
func orderBy(sortKey, def string, allowed []string) string {
	column := def
	for _, a := range allowed {
		if a == sortKey {
			column = a
			break
		}
	}
	return fmt.Sprintf("ORDER BY p.%s ASC, p.id ASC", column)
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, category_id, image_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.ImagePath,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", classify(err))
	}

	r.logger.Debug("product created", zap.String("id", product.ID.String()), zap.String("name", product.Name))
	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`

	product, err := scanProduct(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, classify(err))
	}
	return product, nil
}

// List retrieves one page of all products
func (r *ProductRepository) List(ctx context.Context, page repositories.Page) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p ` +
		orderBy(page.Sort, "id", repositories.ProductSortFields) +
		` LIMIT $1 OFFSET $2`

	return r.query(ctx, query, page.Size, page.Offset())
}

// ListByCategory retrieves one page of the products of a category
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID, page repositories.Page) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.category_id = $1 ` +
		orderBy(page.Sort, "id", repositories.ProductSortFields) +
		` LIMIT $2 OFFSET $3`

	return r.query(ctx, query, categoryID, page.Size, page.Offset())
}

// Search retrieves one page of the products matching the filter.
// The search key matches name or description case-insensitively.
func (r *ProductRepository) Search(ctx context.Context, filter models.ProductSearch, page repositories.Page) ([]*models.Product, error) {
	var (
		conditions []string
		args       []interface{}
		joins      string
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if key := strings.TrimSpace(filter.SearchKey); key != "" {
		p := arg("%" + escapeLike(key) + "%")
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", p, p))
	}
	if filter.PriceFrom > 0 {
		conditions = append(conditions, "p.price >= "+arg(filter.PriceFrom))
	}
	if filter.PriceTo > 0 {
		conditions = append(conditions, "p.price <= "+arg(filter.PriceTo))
	}
	if name := strings.TrimSpace(filter.CategoryName); name != "" {
		joins = " JOIN categories c ON c.id = p.category_id"
		conditions = append(conditions, "c.name ILIKE "+arg("%"+escapeLike(name)+"%"))
	}

	query := `SELECT ` + productColumns + ` FROM products p` + joins
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " " + orderBy(page.Sort, "name", repositories.ProductSortFields)
	query += " LIMIT " + arg(page.Size) + " OFFSET " + arg(page.Offset())

	return r.query(ctx, query, args...)
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...interface{}) ([]*models.Product, error) {
	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}

	return products, nil
}

// Update updates a product
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $2,
		    description = $3,
		    price = $4,
		    category_id = $5,
		    image_path = $6,
		    updated_at = $7
		WHERE id = $1
	`

	product.UpdatedAt = time.Now()
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.CategoryID,
		product.ImagePath,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", classify(err))
	}
	if err := expectAffected(result, "product "+product.ID.String()); err != nil {
		return err
	}

	r.logger.Debug("product updated", zap.String("id", product.ID.String()))
	return nil
}

// Delete deletes a product
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", classify(err))
	}
	if err := expectAffected(result, "product "+id.String()); err != nil {
		return err
	}

	r.logger.Debug("product deleted", zap.String("id", id.String()))
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user input
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
