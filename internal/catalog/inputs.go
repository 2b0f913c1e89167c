package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBookInput carries the fields for a new book. Status is not
// accepted: every book starts AVAILABLE.
type CreateBookInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Author      string           `json:"author" validate:"required,max=100"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	PublishDate *time.Time       `json:"publish_date,omitempty"`
	ISBN        string           `json:"isbn" validate:"required,isbn_loose"`
	CategoryIDs []string         `json:"category_ids,omitempty"`
}

// UpdateBookInput is a partial patch: nil fields are left untouched.
// An empty CategoryIDs slice also leaves the existing set untouched.
type UpdateBookInput struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Author      *string          `json:"author,omitempty" validate:"omitempty,min=1,max=100"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	PublishDate *time.Time       `json:"publish_date,omitempty"`
	ISBN        *string          `json:"isbn,omitempty" validate:"omitempty,isbn_loose"`
	Status      *Status          `json:"status,omitempty"`
	CategoryIDs []string         `json:"category_ids,omitempty"`
}

// CreateCategoryInput carries the fields for a new category.
type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty" validate:"max=500"`
}
