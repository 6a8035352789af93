package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"go.uber.org/zap"
)

// CategoryRepository implements the repositories.CategoryRepository interface
type CategoryRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *DB, logger *zap.Logger) repositories.CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, image_path, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.ImagePath,
		category.Rating,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", classify(err))
	}

	r.logger.Debug("category created", zap.String("id", category.ID.String()), zap.String("name", category.Name))
	return nil
}

// GetByID retrieves a category by ID
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `
		SELECT id, name, image_path, rating, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	category := &models.Category{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.ImagePath,
		&category.Rating,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get category %s: %w", id, classify(err))
	}

	return category, nil
}

// List retrieves all categories, best rated first
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT id, name, image_path, rating, created_at, updated_at
		FROM categories
		ORDER BY rating DESC, name ASC
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&category.ImagePath,
			&category.Rating,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

// Update updates a category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2,
		    image_path = $3,
		    rating = $4,
		    updated_at = $5
		WHERE id = $1
	`

	category.UpdatedAt = time.Now()
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.ImagePath,
		category.Rating,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", classify(err))
	}
	if err := expectAffected(result, "category "+category.ID.String()); err != nil {
		return err
	}

	r.logger.Debug("category updated", zap.String("id", category.ID.String()))
	return nil
}

// Delete deletes a category. Categories that still hold products cannot be deleted.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", classify(err))
	}
	if err := expectAffected(result, "category "+id.String()); err != nil {
		return err
	}

	r.logger.Debug("category deleted", zap.String("id", id.String()))
	return nil
}
