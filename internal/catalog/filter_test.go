package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleBook() Book {
	return Book{
		ID:     "b1",
		Title:  "Spring in Action",
		Author: "Craig Walls",
		Price:  decimal.RequireFromString("49.90"),
		ISBN:   "978-1-61729-120-3",
		Status: StatusAvailable,
		Categories: []Category{
			{ID: "c1", Name: "Programming"},
		},
	}
}

func TestFilterIsEmpty(t *testing.T) {
	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{TitleContains: "go"}.IsEmpty())
	assert.False(t, Filter{MinPrice: dec("1")}.IsEmpty())
	assert.False(t, Filter{CategoryIDs: []string{"c1"}}.IsEmpty())
}

func TestFilterMatch_EmptyMatchesEverything(t *testing.T) {
	assert.True(t, Filter{}.Match(sampleBook()))
	assert.True(t, Filter{}.Match(Book{}))
}

func TestFilterMatch_TitleAndAuthorAreCaseInsensitive(t *testing.T) {
	b := sampleBook()

	assert.True(t, Filter{TitleContains: "spring"}.Match(b))
	assert.True(t, Filter{TitleContains: "SPRING"}.Match(b))
	assert.True(t, Filter{AuthorContains: "walls"}.Match(b))
	assert.False(t, Filter{TitleContains: "kubernetes"}.Match(b))
}

func TestFilterMatch_PriceBoundsAreInclusive(t *testing.T) {
	b := sampleBook() // 49.90

	assert.True(t, Filter{MinPrice: dec("49.90")}.Match(b))
	assert.True(t, Filter{MaxPrice: dec("49.90")}.Match(b))
	assert.True(t, Filter{MinPrice: dec("40"), MaxPrice: dec("60")}.Match(b))
	assert.False(t, Filter{MinPrice: dec("50")}.Match(b))
	assert.False(t, Filter{MaxPrice: dec("49.89")}.Match(b))
}

func TestFilterMatch_Status(t *testing.T) {
	b := sampleBook()

	st := StatusAvailable
	assert.True(t, Filter{Status: &st}.Match(b))

	st = StatusDiscontinued
	assert.False(t, Filter{Status: &st}.Match(b))
}

func TestFilterMatch_CategoryIntersection(t *testing.T) {
	b := sampleBook() // references c1

	assert.True(t, Filter{CategoryIDs: []string{"c1"}}.Match(b))
	assert.True(t, Filter{CategoryIDs: []string{"c9", "c1"}}.Match(b))
	assert.False(t, Filter{CategoryIDs: []string{"c9"}}.Match(b))

	b.Categories = nil
	assert.False(t, Filter{CategoryIDs: []string{"c1"}}.Match(b))
}

func TestFilterMatch_CriteriaCombineWithAnd(t *testing.T) {
	b := sampleBook()

	assert.True(t, Filter{TitleContains: "spring", MinPrice: dec("40")}.Match(b))
	assert.False(t, Filter{TitleContains: "spring", MinPrice: dec("60")}.Match(b))
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		allowed  bool
	}{
		{StatusAvailable, StatusUnavailable, true},
		{StatusAvailable, StatusDiscontinued, true},
		{StatusUnavailable, StatusAvailable, true},
		{StatusUnavailable, StatusDiscontinued, true},
		{StatusDiscontinued, StatusUnavailable, true},
		{StatusDiscontinued, StatusAvailable, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus("AVAILABLE")
	assert.True(t, ok)
	assert.Equal(t, StatusAvailable, st)

	_, ok = ParseStatus("available")
	assert.False(t, ok)

	_, ok = ParseStatus("SOLD_OUT")
	assert.False(t, ok)
}
