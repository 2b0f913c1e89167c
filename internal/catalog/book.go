package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the circulation status of a book.
type Status string

const (
	StatusAvailable    Status = "AVAILABLE"
	StatusUnavailable  Status = "UNAVAILABLE"
	StatusDiscontinued Status = "DISCONTINUED"
)

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusAvailable, StatusUnavailable, StatusDiscontinued:
		return Status(s), true
	}
	return "", false
}

// CanTransitionTo reports whether a status change is legal.
// The only forbidden edge is DISCONTINUED -> AVAILABLE; everything
// else, including self-transitions, is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	return !(s == StatusDiscontinued && next == StatusAvailable)
}

// Book represents a catalog entry.
type Book struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	Price       decimal.Decimal `json:"price"`
	PublishDate *time.Time      `json:"publish_date,omitempty"`
	ISBN        string          `json:"isbn"`
	Status      Status          `json:"status"`
	Categories  []Category      `json:"categories,omitempty"`
}

// HasCategory reports whether the book references the given category id.
// Category membership is by identifier.
func (b Book) HasCategory(id string) bool {
	for _, c := range b.Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// CategoryIDs returns the ids of the book's categories.
func (b Book) CategoryIDs() []string {
	if len(b.Categories) == 0 {
		return nil
	}
	ids := make([]string, 0, len(b.Categories))
	for _, c := range b.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}

// Category groups books. The book side owns the association; the set of
// books in a category is always derived by query, never stored here.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
