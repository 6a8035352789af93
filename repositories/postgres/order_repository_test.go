package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"go.uber.org/zap"
)

var orderRowColumns = []string{"id", "user_id", "price", "status", "created_at", "updated_at"}

func TestOrderRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db, zap.NewNop())

	pen := models.NewProduct("Pen", "", 100, uuid.New(), "")
	ink := models.NewProduct("Ink", "", 250, uuid.New(), "")
	order := models.NewOrder(uuid.New(), []models.CartLine{
		{Product: pen, Quantity: 2},
		{Product: ink, Quantity: 1},
	})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WithArgs(order.ID, order.UserID, int64(450), models.OrderStatusCreated, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(order.ID, pen.ID, "Pen", int64(100), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs(order.ID, ink.ID, "Ink", int64(250), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), order))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("loads items", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db, zap.NewNop())
		id, userID, productID := uuid.New(), uuid.New(), uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(orderRowColumns).
				AddRow(id.String(), userID.String(), int64(200), "PAID", now, now))
		mock.ExpectQuery(regexp.QuoteMeta("FROM order_items")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"order_id", "product_id", "name", "unit_price", "quantity"}).
				AddRow(id.String(), productID.String(), "Pen", int64(100), 2))

		order, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPaid, order.Status)
		assert.Equal(t, userID, order.UserID)
		require.Len(t, order.Items, 1)
		assert.Equal(t, productID, order.Items[0].ProductID)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewOrderRepository(db, zap.NewNop())

		mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, uuid.New())
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
	})
}

func TestOrderRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db, zap.NewNop())
	userID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY price ASC, id ASC")).
		WithArgs(userID, 10, 0).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(uuid.New().String(), userID.String(), int64(100), "CREATED", now, now).
			AddRow(uuid.New().String(), userID.String(), int64(300), "SHIPPED", now, now))

	orders, err := repo.ListByUser(context.Background(), userID, repositories.Page{Size: 10, Sort: "price"})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, models.OrderStatusShipped, orders[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db, zap.NewNop())
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET status = $2")).
		WithArgs(id, models.OrderStatusShipped, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, models.OrderStatusShipped)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}
