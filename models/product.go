package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is an item that can be put into a cart and ordered.
// Prices are in the smallest currency unit.
type Product struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Price       int64     `json:"price" db:"price"`
	CategoryID  uuid.UUID `json:"categoryId" db:"category_id"`
	ImagePath   string    `json:"imagePath" db:"image_path"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new Product instance
func NewProduct(name, description string, price int64, categoryID uuid.UUID, imagePath string) *Product {
	now := time.Now()
	return &Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price,
		CategoryID:  categoryID,
		ImagePath:   imagePath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ProductSearch filters a product search. Zero values disable a filter.
type ProductSearch struct {
	SearchKey    string `json:"searchKey"`
	PriceFrom    int64  `json:"priceFrom" validate:"gte=0"`
	PriceTo      int64  `json:"priceTo" validate:"gte=0"`
	CategoryName string `json:"categoryName"`
}
