package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products in the catalog
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ImagePath string    `json:"imagePath,omitempty" db:"image_path"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a new Category instance
func NewCategory(name, imagePath string, rating int) *Category {
	now := time.Now()
	return &Category{
		ID:        uuid.New(),
		Name:      name,
		ImagePath: imagePath,
		Rating:    rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
