package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "CREATED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusCreated, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a purchase placed from a cart
type Order struct {
	ID        uuid.UUID    `json:"id" db:"id"`
	UserID    uuid.UUID    `json:"userId" db:"user_id"`
	Price     int64        `json:"price" db:"price"`
	Status    OrderStatus  `json:"status" db:"status"`
	Items     []*OrderItem `json:"items,omitempty"`
	CreatedAt time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time    `json:"updatedAt" db:"updated_at"`
}

// OrderItem is one product line of an order. UnitPrice is the price at order time.
type OrderItem struct {
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID uuid.UUID `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	UnitPrice int64     `json:"unitPrice" db:"unit_price"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order for userID from cart lines, pricing it from the lines
func NewOrder(userID uuid.UUID, lines []CartLine) *Order {
	now := time.Now()
	order := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    OrderStatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, line := range lines {
		order.Items = append(order.Items, &OrderItem{
			OrderID:   order.ID,
			ProductID: line.Product.ID,
			Name:      line.Product.Name,
			UnitPrice: line.Product.Price,
			Quantity:  line.Quantity,
		})
		order.Price += line.Subtotal()
	}
	return order
}
