package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/webshop/middleware"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services/auth"
	"github.com/upb/webshop/services/orders"
	"github.com/upb/webshop/utils"
	"go.uber.org/zap"
)

// OrderService places and retrieves orders
type OrderService interface {
	Create(ctx context.Context, principal *auth.Principal) (*models.Order, error)
	Get(ctx context.Context, principal *auth.Principal, id uuid.UUID) (*models.Order, error)
	Items(ctx context.Context, principal *auth.Principal, id uuid.UUID) ([]*models.OrderItem, error)
	ListByUser(ctx context.Context, principal *auth.Principal, userID uuid.UUID, page repositories.Page) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders OrderService
	logger *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := principal(w, r)
	if !ok {
		return
	}

	order, err := h.orders.Create(ctx, p)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("order placed",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("order_id", order.ID.String()),
		zap.Int64("price", order.Price))

	_ = utils.WriteCreated(w, order)
}

// Get handles GET /api/v1/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orders.Get(r.Context(), p, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, order)
}

// Items handles GET /api/v1/orders/{id}/products
func (h *OrderHandler) Items(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	items, err := h.orders.Items(r.Context(), p, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, items)
}

// ListByUser handles GET /api/v1/orders/user/{id}
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	userID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	page, ok := pageQuery(w, r)
	if !ok {
		return
	}

	list, err := h.orders.ListByUser(r.Context(), p, userID, page)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, list)
}

// UpdateStatus handles PUT /api/v1/orders/{id}
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req orders.StatusRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	order, err := h.orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("order status changed",
		zap.String("request_id", middleware.GetRequestIDFromContext(ctx)),
		zap.String("order_id", id.String()),
		zap.String("status", string(order.Status)))

	_ = utils.WriteOK(w, order)
}

// Delete handles DELETE /api/v1/orders/{id}
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.orders.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
