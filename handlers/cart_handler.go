package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/utils"
	"go.uber.org/zap"
)

// CartService holds the carts of authenticated users
type CartService interface {
	Get(subject string) models.CartView
	Add(ctx context.Context, subject string, productID uuid.UUID) (models.CartView, error)
	Remove(subject string, productID uuid.UUID) (models.CartView, error)
	Clear(subject string)
}

// CartHandler handles the caller's cart. Every route requires authentication.
type CartHandler struct {
	carts  CartService
	logger *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(carts CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:  carts,
		logger: logger,
	}
}

// Get handles GET /api/v1/cart
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	_ = utils.WriteOK(w, h.carts.Get(p.Subject))
}

// Add handles POST /api/v1/cart/products/{id}
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	view, err := h.carts.Add(r.Context(), p.Subject, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, view)
}

// Remove handles DELETE /api/v1/cart/products/{id}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	view, err := h.carts.Remove(p.Subject, id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, view)
}

// Clear handles DELETE /api/v1/cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	h.carts.Clear(p.Subject)
	utils.WriteNoContent(w)
}
