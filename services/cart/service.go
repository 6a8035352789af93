// Package cart keeps server-side shopping carts in process memory, keyed by
// the authenticated subject.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/repositories"
	"github.com/upb/webshop/services"
	"go.uber.org/zap"
)

// ProductLookup resolves products added to a cart
type ProductLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service stores one cart per subject. A cart untouched for the idle TTL is dropped.
type Service struct {
	mu       sync.Mutex
	carts    *gocache.Cache
	products ProductLookup
	logger   *zap.Logger
}

// NewService creates a cart store. A zero idleTTL keeps carts until cleared.
func NewService(products ProductLookup, idleTTL, cleanupInterval time.Duration, logger *zap.Logger) *Service {
	if idleTTL <= 0 {
		idleTTL = gocache.NoExpiration
		cleanupInterval = 0
	}
	return &Service{
		carts:    gocache.New(idleTTL, cleanupInterval),
		products: products,
		logger:   logger,
	}
}

// load returns the subject's cart, creating an empty one. Callers hold mu.
func (s *Service) load(subject string) *models.Cart {
	if v, ok := s.carts.Get(subject); ok {
		return v.(*models.Cart)
	}
	return &models.Cart{}
}

// store saves the cart and restarts its idle timer. Callers hold mu.
func (s *Service) store(subject string, c *models.Cart) {
	if c.Empty() {
		s.carts.Delete(subject)
		return
	}
	s.carts.Set(subject, c, gocache.DefaultExpiration)
}

// Get returns the subject's cart with its total
func (s *Service) Get(subject string) models.CartView {
	return s.Snapshot(subject).View()
}

// Snapshot returns a copy of the subject's cart
func (s *Service) Snapshot(subject string) *models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(subject).Clone()
}

// Add puts one unit of a product into the subject's cart
func (s *Service) Add(ctx context.Context, subject string, productID uuid.UUID) (models.CartView, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.CartView{}, services.ErrProductNotFound
		}
		return models.CartView{}, services.ErrDatabaseError.Wrap(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(subject)
	c.Add(product)
	s.store(subject, c)

	s.logger.Debug("product added to cart",
		zap.String("subject", subject),
		zap.String("product_id", productID.String()))
	return c.Clone().View(), nil
}

// Remove takes one unit of a product out of the subject's cart
func (s *Service) Remove(subject string, productID uuid.UUID) (models.CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(subject)
	if !c.Remove(productID) {
		return models.CartView{}, services.ErrProductNotInCart
	}
	s.store(subject, c)
	return c.Clone().View(), nil
}

// Release removes the lines of placed, a snapshot taken earlier, from the
// subject's cart
func (s *Service) Release(subject string, placed *models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load(subject)
	c.Subtract(placed)
	s.store(subject, c)
}

// Clear empties the subject's cart
func (s *Service) Clear(subject string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts.Delete(subject)
}

// Len returns the number of non-empty carts
func (s *Service) Len() int {
	return s.carts.ItemCount()
}
