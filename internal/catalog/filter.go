package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Filter is the optional criteria set for the structured book search.
// Absent criteria impose no constraint; the zero value matches every book.
// All supplied criteria must hold (logical AND).
type Filter struct {
	TitleContains  string
	AuthorContains string
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	Status         *Status
	CategoryIDs    []string
}

// IsEmpty reports whether no criterion is set.
func (f Filter) IsEmpty() bool {
	return f.TitleContains == "" &&
		f.AuthorContains == "" &&
		f.MinPrice == nil &&
		f.MaxPrice == nil &&
		f.Status == nil &&
		len(f.CategoryIDs) == 0
}

// Match evaluates the filter against a book in memory. Store adapters may
// instead compile the same criteria into their native query language; both
// forms must agree.
func (f Filter) Match(b Book) bool {
	if f.TitleContains != "" && !containsFold(b.Title, f.TitleContains) {
		return false
	}
	if f.AuthorContains != "" && !containsFold(b.Author, f.AuthorContains) {
		return false
	}
	if f.MinPrice != nil && b.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && b.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Status != nil && b.Status != *f.Status {
		return false
	}
	if len(f.CategoryIDs) > 0 && !f.intersects(b) {
		return false
	}
	return true
}

// intersects is the inner-join semantic: the book matches if it references
// at least one of the requested categories.
func (f Filter) intersects(b Book) bool {
	for _, id := range f.CategoryIDs {
		if b.HasCategory(id) {
			return true
		}
	}
	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
