// Package orders places orders from carts and enforces who may see them.
package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services"
	"github.com/upb/webshop/services/auth"
	"go.uber.org/zap"
)

// CartStore is the view of the cart service that ordering needs
type CartStore interface {
	Snapshot(subject string) *models.Cart
	Release(subject string, placed *models.Cart)
}

// StatusRequest changes the status of an order
type StatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// Service implements order placement and retrieval
type Service struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
	carts    CartStore
	txMgr    repositories.TransactionManager
	logger   *zap.Logger
}

// NewService creates a new order service
func NewService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	users repositories.UserRepository,
	carts CartStore,
	txMgr repositories.TransactionManager,
	logger *zap.Logger,
) *Service {
	return &Service{
		orders:   orders,
		products: products,
		users:    users,
		carts:    carts,
		txMgr:    txMgr,
		logger:   logger,
	}
}

// Create places an order from the caller's cart. Items are priced from the
// catalog at the time of the order. The cart is cleared once the order is stored.
func (s *Service) Create(ctx context.Context, principal *auth.Principal) (*models.Order, error) {
	user, err := s.caller(ctx, principal)
	if err != nil {
		return nil, err
	}

	cart := s.carts.Snapshot(principal.Subject)
	if cart.Empty() {
		return nil, services.ErrCartEmpty
	}

	order, err := services.WithTransactionResult(ctx, s.txMgr, func(ctx context.Context, _ repositories.Transaction) (*models.Order, error) {
		lines := make([]models.CartLine, 0, len(cart.Lines))
		for _, line := range cart.Lines {
			product, err := s.products.GetByID(ctx, line.Product.ID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return nil, services.ErrProductNotFound.WithDetail("productId", line.Product.ID.String())
				}
				return nil, services.ErrDatabaseError.Wrap(err)
			}
			lines = append(lines, models.CartLine{Product: product, Quantity: line.Quantity})
		}

		order := models.NewOrder(user.ID, lines)
		if err := s.orders.Create(ctx, order); err != nil {
			return nil, services.ErrDatabaseError.Wrap(err)
		}
		return order, nil
	})
	if err != nil {
		var domainErr *services.DomainError
		if !errors.As(err, &domainErr) {
			err = services.ErrTransactionFailed.Wrap(err)
		}
		s.logger.Warn("order not placed", zap.String("subject", principal.Subject), zap.Error(err))
		return nil, err
	}

	s.carts.Release(principal.Subject, cart)

	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.Int64("price", order.Price))
	return order, nil
}

// Get retrieves an order with its items. Only its owner and admins may see it.
func (s *Service) Get(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, orderError(err)
	}

	if !principal.HasRole(models.RoleAdmin) {
		user, err := s.caller(ctx, principal)
		if err != nil {
			return nil, err
		}
		if order.UserID != user.ID {
			return nil, services.ErrForbidden
		}
	}
	return order, nil
}

// Items returns the product lines of an order
func (s *Service) Items(ctx context.Context, principal *auth.Principal, id uuid.UUID) ([]*models.OrderItem, error) {
	order, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return order.Items, nil
}

// ListByUser returns one page of a user's orders. Users may only list their own.
func (s *Service) ListByUser(ctx context.Context, principal *auth.Principal, userID uuid.UUID, page repositories.Page) ([]*models.Order, error) {
	page, err := services.NormalizePage(page, repositories.OrderSortFields, "created_at")
	if err != nil {
		return nil, err
	}

	if !principal.HasRole(models.RoleAdmin) {
		user, err := s.caller(ctx, principal)
		if err != nil {
			return nil, err
		}
		if user.ID != userID {
			return nil, services.ErrForbidden
		}
	}

	orders, err := s.orders.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return orders, nil
}

// UpdateStatus moves an order to another status
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, services.ErrInvalidOrderStatus.WithDetail("status", string(status))
	}

	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, orderError(err)
	}

	s.logger.Info("order status changed", zap.String("order_id", id.String()), zap.String("status", string(status)))

	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, orderError(err)
	}
	return order, nil
}

// Delete deletes an order
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		return orderError(err)
	}

	s.logger.Info("order deleted", zap.String("order_id", id.String()))
	return nil
}

// caller resolves the user record behind an authenticated principal
func (s *Service) caller(ctx context.Context, principal *auth.Principal) (*models.User, error) {
	if principal == nil {
		return nil, services.ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, principal.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, services.ErrDatabaseError.Wrap(err)
	}
	return user, nil
}

func orderError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return services.ErrOrderNotFound
	}
	return services.ErrDatabaseError.Wrap(err)
}
