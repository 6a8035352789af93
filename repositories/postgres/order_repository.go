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

// OrderRepository implements the repositories.OrderRepository interface
type OrderRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *DB, logger *zap.Logger) repositories.OrderRepository {
	return &OrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an order with its items. Callers that need atomicity run it
// inside a transaction.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	executor := GetExecutor(ctx, r.db)

	query := `
		INSERT INTO orders (id, user_id, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := executor.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.Price,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", classify(err))
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range order.Items {
		if _, err := executor.ExecContext(ctx, itemQuery,
			order.ID,
			item.ProductID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
		); err != nil {
			return fmt.Errorf("failed to create order item: %w", classify(err))
		}
	}

	r.logger.Debug("order created",
		zap.String("id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.Int("items", len(order.Items)))
	return nil
}

// GetByID retrieves an order with its items
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	executor := GetExecutor(ctx, r.db)

	query := `
		SELECT id, user_id, price, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`
	order := &models.Order{}
	err := executor.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Price,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", id, classify(err))
	}

	itemQuery := `
		SELECT order_id, product_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY name ASC
	`
	rows, err := executor.QueryContext(ctx, itemQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	order.Items = []*models.OrderItem{}
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order item rows: %w", err)
	}

	return order, nil
}

// ListByUser retrieves one page of the orders of a user, without items
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, page repositories.Page) ([]*models.Order, error) {
	column := "created_at"
	for _, f := range repositories.OrderSortFields {
		if f == page.Sort {
			column = f
			break
		}
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, price, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY %s ASC, id ASC
		LIMIT $2 OFFSET $3
	`, column)

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, userID, page.Size, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Price,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the status of an order
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if err := expectAffected(result, "order "+id.String()); err != nil {
		return err
	}

	r.logger.Debug("order status updated", zap.String("id", id.String()), zap.String("status", string(status)))
	return nil
}

// Delete deletes an order; its items go with it
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE id = $1`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if err := expectAffected(result, "order "+id.String()); err != nil {
		return err
	}

	r.logger.Debug("order deleted", zap.String("id", id.String()))
	return nil
}
