package catalog_test

import (
	"context"
	"testing"

	"bookcatalog/internal/catalog"
	"bookcatalog/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*catalog.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return catalog.NewService(mem.Books(), mem.Categories()), mem
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func mustCreateCategory(t *testing.T, svc *catalog.Service, name string) catalog.Category {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), catalog.CreateCategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func mustCreateBook(t *testing.T, svc *catalog.Service, in catalog.CreateBookInput) catalog.Book {
	t.Helper()
	b, err := svc.CreateBook(context.Background(), in)
	require.NoError(t, err)
	return b
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("new book starts available", func(t *testing.T) {
		svc, _ := newService(t)
		b := mustCreateBook(t, svc, catalog.CreateBookInput{
			Title:  "Spring in Action",
			Author: "Craig Walls",
			Price:  price("49.90"),
			ISBN:   "978-1-61729-120-3",
		})
		assert.NotEmpty(t, b.ID)
		assert.Equal(t, catalog.StatusAvailable, b.Status)
	})

	t.Run("duplicate isbn is rejected", func(t *testing.T) {
		svc, _ := newService(t)
		mustCreateBook(t, svc, catalog.CreateBookInput{
			Title: "First", Author: "A", Price: price("10"), ISBN: "978-1-61729-120-3",
		})

		_, err := svc.CreateBook(ctx, catalog.CreateBookInput{
			Title: "Second", Author: "B", Price: price("20"), ISBN: "978-1-61729-120-3",
		})
		assert.True(t, catalog.IsCode(err, catalog.CodeDuplicateISBN))
	})

	t.Run("unknown categories fail as a whole, sorted", func(t *testing.T) {
		svc, _ := newService(t)
		c := mustCreateCategory(t, svc, "Programming")

		_, err := svc.CreateBook(ctx, catalog.CreateBookInput{
			Title: "T", Author: "A", Price: price("10"), ISBN: "978-1-61729-120-3",
			CategoryIDs: []string{"zz-missing", c.ID, "aa-missing"},
		})
		require.Error(t, err)

		var be *catalog.Error
		require.ErrorAs(t, err, &be)
		assert.Equal(t, catalog.CodeCategoryNotFound, be.Code)
		assert.Equal(t, []string{"aa-missing", "zz-missing"}, be.MissingIDs)
	})

	t.Run("valid categories are attached", func(t *testing.T) {
		svc, _ := newService(t)
		c1 := mustCreateCategory(t, svc, "Programming")
		c2 := mustCreateCategory(t, svc, "Java")

		b := mustCreateBook(t, svc, catalog.CreateBookInput{
			Title: "T", Author: "A", Price: price("10"), ISBN: "978-1-61729-120-3",
			CategoryIDs: []string{c1.ID, c2.ID, c1.ID},
		})
		assert.Len(t, b.Categories, 2)
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, _ := newService(t)

		cases := map[string]catalog.CreateBookInput{
			"missing title":  {Author: "A", Price: price("10"), ISBN: "978-1-61729-120-3"},
			"missing author": {Title: "T", Price: price("10"), ISBN: "978-1-61729-120-3"},
			"missing price":  {Title: "T", Author: "A", ISBN: "978-1-61729-120-3"},
			"bad isbn":       {Title: "T", Author: "A", Price: price("10"), ISBN: "not-an-isbn"},
			"negative price": {Title: "T", Author: "A", Price: price("-1"), ISBN: "978-1-61729-120-3"},
		}
		for name, in := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.CreateBook(ctx, in)
				assert.True(t, catalog.IsCode(err, catalog.CodeInvalidParameter), "got %v", err)
			})
		}
	})
}

func TestGetBook(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	created := mustCreateBook(t, svc, catalog.CreateBookInput{
		Title: "T", Author: "A", Price: price("10"), ISBN: "978-1-61729-120-3",
	})

	got, err := svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetBook(ctx, "nope")
	assert.True(t, catalog.IsCode(err, catalog.CodeBookNotFound))

	byISBN, err := svc.GetBookByISBN(ctx, "978-1-61729-120-3")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byISBN.ID)

	_, err = svc.GetBookByISBN(ctx, "978-0-00-000000-2")
	assert.True(t, catalog.IsCode(err, catalog.CodeBookNotFound))
}

func TestUpdateBook(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*catalog.Service, catalog.Book) {
		svc, _ := newService(t)
		b := mustCreateBook(t, svc, catalog.CreateBookInput{
			Title: "Spring in Action", Author: "Craig Walls",
			Price: price("49.90"), ISBN: "978-1-61729-120-3",
		})
		return svc, b
	}

	t.Run("empty patch changes nothing", func(t *testing.T) {
		svc, b := seed(t)

		updated, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{})
		require.NoError(t, err)
		assert.Equal(t, b.Title, updated.Title)
		assert.Equal(t, b.Author, updated.Author)
		assert.True(t, b.Price.Equal(updated.Price))
		assert.Equal(t, b.ISBN, updated.ISBN)
		assert.Equal(t, b.Status, updated.Status)
	})

	t.Run("partial patch changes only present fields", func(t *testing.T) {
		svc, b := seed(t)

		title := "Spring in Action, 6th Edition"
		updated, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
		assert.Equal(t, b.Author, updated.Author)
	})

	t.Run("unknown book", func(t *testing.T) {
		svc, _ := seed(t)
		_, err := svc.UpdateBook(ctx, "nope", catalog.UpdateBookInput{})
		assert.True(t, catalog.IsCode(err, catalog.CodeBookNotFound))
	})

	t.Run("isbn change re-checks uniqueness", func(t *testing.T) {
		svc, b := seed(t)
		mustCreateBook(t, svc, catalog.CreateBookInput{
			Title: "Other", Author: "O", Price: price("10"), ISBN: "978-7-121-37213-0",
		})

		taken := "978-7-121-37213-0"
		_, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{ISBN: &taken})
		assert.True(t, catalog.IsCode(err, catalog.CodeDuplicateISBN))

		// resubmitting the book's own isbn is not a conflict
		same := b.ISBN
		_, err = svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{ISBN: &same})
		assert.NoError(t, err)
	})

	t.Run("discontinued cannot return to available", func(t *testing.T) {
		svc, b := seed(t)

		st := catalog.StatusDiscontinued
		_, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{Status: &st})
		require.NoError(t, err)

		st = catalog.StatusAvailable
		_, err = svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{Status: &st})
		assert.True(t, catalog.IsCode(err, catalog.CodeInvalidStatusTransition))

		// but it may become unavailable
		st = catalog.StatusUnavailable
		updated, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{Status: &st})
		require.NoError(t, err)
		assert.Equal(t, catalog.StatusUnavailable, updated.Status)
	})

	t.Run("other transitions are legal", func(t *testing.T) {
		svc, b := seed(t)

		for _, st := range []catalog.Status{
			catalog.StatusUnavailable, catalog.StatusAvailable, catalog.StatusDiscontinued,
		} {
			next := st
			updated, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{Status: &next})
			require.NoError(t, err)
			assert.Equal(t, st, updated.Status)
		}
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		svc, b := seed(t)
		st := catalog.Status("SOLD_OUT")
		_, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{Status: &st})
		assert.True(t, catalog.IsCode(err, catalog.CodeInvalidParameter))
	})

	t.Run("category patch replaces the whole set", func(t *testing.T) {
		svc, b := seed(t)
		c1 := mustCreateCategory(t, svc, "Programming")
		c2 := mustCreateCategory(t, svc, "Java")

		updated, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{CategoryIDs: []string{c1.ID}})
		require.NoError(t, err)
		require.Len(t, updated.Categories, 1)
		assert.Equal(t, c1.ID, updated.Categories[0].ID)

		updated, err = svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{CategoryIDs: []string{c2.ID}})
		require.NoError(t, err)
		require.Len(t, updated.Categories, 1)
		assert.Equal(t, c2.ID, updated.Categories[0].ID)

		// an absent set leaves the previous association untouched
		updated, err = svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{})
		require.NoError(t, err)
		require.Len(t, updated.Categories, 1)
		assert.Equal(t, c2.ID, updated.Categories[0].ID)
	})

	t.Run("unknown category ids fail the whole patch", func(t *testing.T) {
		svc, b := seed(t)

		_, err := svc.UpdateBook(ctx, b.ID, catalog.UpdateBookInput{
			CategoryIDs: []string{"x-missing", "a-missing"},
		})
		var be *catalog.Error
		require.ErrorAs(t, err, &be)
		assert.Equal(t, catalog.CodeCategoryNotFound, be.Code)
		assert.Equal(t, []string{"a-missing", "x-missing"}, be.MissingIDs)
	})
}

func seedCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	svc, _ := newService(t)

	prog := mustCreateCategory(t, svc, "Programming")

	mustCreateBook(t, svc, catalog.CreateBookInput{
		Title: "Spring in Action", Author: "Craig Walls",
		Price: price("49.90"), ISBN: "978-1-61729-120-3",
		CategoryIDs: []string{prog.ID},
	})
	mustCreateBook(t, svc, catalog.CreateBookInput{
		Title: "Spring Boot实战", Author: "丁雪丰",
		Price: price("59.00"), ISBN: "978-7-121-37213-0",
		CategoryIDs: []string{prog.ID},
	})
	mustCreateBook(t, svc, catalog.CreateBookInput{
		Title: "The Go Programming Language", Author: "Alan Donovan",
		Price: price("39.99"), ISBN: "978-0-13-419044-0",
	})
	return svc
}

func TestSearchBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("empty filter returns the whole catalog", func(t *testing.T) {
		svc := seedCatalog(t)
		books, err := svc.SearchBooks(ctx, catalog.Filter{})
		require.NoError(t, err)
		assert.Len(t, books, 3)
	})

	t.Run("title match is case-insensitive", func(t *testing.T) {
		svc := seedCatalog(t)
		books, err := svc.SearchBooks(ctx, catalog.Filter{TitleContains: "spring"})
		require.NoError(t, err)
		require.Len(t, books, 2)
		for _, b := range books {
			assert.Contains(t, b.Title, "Spring")
		}
	})

	t.Run("criteria combine with and", func(t *testing.T) {
		svc := seedCatalog(t)
		books, err := svc.SearchBooks(ctx, catalog.Filter{
			TitleContains: "spring",
			MinPrice:      price("55"),
		})
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "978-7-121-37213-0", books[0].ISBN)
	})

	t.Run("no match is an empty result, not an error", func(t *testing.T) {
		svc := seedCatalog(t)
		books, err := svc.SearchBooks(ctx, catalog.Filter{TitleContains: "kubernetes"})
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestSearchByTitleOrAuthor(t *testing.T) {
	ctx := context.Background()
	svc := seedCatalog(t)

	// "spring" matches two titles, "donovan" one author; OR yields all three
	books, err := svc.SearchByTitleOrAuthor(ctx, "spring", "donovan")
	require.NoError(t, err)
	assert.Len(t, books, 3)

	books, err = svc.SearchByTitleOrAuthor(ctx, "go programming", "walls")
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestBooksByPriceRange(t *testing.T) {
	ctx := context.Background()
	svc := seedCatalog(t)

	t.Run("inclusive bounds", func(t *testing.T) {
		books, err := svc.BooksByPriceRange(ctx, price("40"), price("60"))
		require.NoError(t, err)
		require.Len(t, books, 2)
	})

	t.Run("missing bound", func(t *testing.T) {
		_, err := svc.BooksByPriceRange(ctx, price("40"), nil)
		assert.True(t, catalog.IsCode(err, catalog.CodeInvalidParameter))

		_, err = svc.BooksByPriceRange(ctx, nil, price("60"))
		assert.True(t, catalog.IsCode(err, catalog.CodeInvalidParameter))
	})

	t.Run("inverted bounds", func(t *testing.T) {
		_, err := svc.BooksByPriceRange(ctx, price("60"), price("40"))
		assert.True(t, catalog.IsCode(err, catalog.CodeInvalidParameter))
	})

	t.Run("equal bounds", func(t *testing.T) {
		books, err := svc.BooksByPriceRange(ctx, price("49.90"), price("49.90"))
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "978-1-61729-120-3", books[0].ISBN)
	})
}

func TestBooksByAuthor(t *testing.T) {
	ctx := context.Background()
	svc := seedCatalog(t)

	books, err := svc.BooksByAuthor(ctx, "  walls  ")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Craig Walls", books[0].Author)

	_, err = svc.BooksByAuthor(ctx, "   ")
	assert.True(t, catalog.IsCode(err, catalog.CodeInvalidParameter))
}

func TestAvailableBooks(t *testing.T) {
	ctx := context.Background()
	svc := seedCatalog(t)

	books, err := svc.AvailableBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)

	st := catalog.StatusUnavailable
	_, err = svc.UpdateBook(ctx, books[0].ID, catalog.UpdateBookInput{Status: &st})
	require.NoError(t, err)

	books, err = svc.AvailableBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestBooksByCategory(t *testing.T) {
	ctx := context.Background()
	svc := seedCatalog(t)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	books, err := svc.BooksByCategory(ctx, cats[0].ID)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	_, err = svc.BooksByCategory(ctx, "nope")
	assert.True(t, catalog.IsCode(err, catalog.CodeCategoryNotFound))
}

func TestCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("create and list", func(t *testing.T) {
		svc, _ := newService(t)
		mustCreateCategory(t, svc, "Programming")
		mustCreateCategory(t, svc, "Databases")

		cats, err := svc.ListCategories(ctx)
		require.NoError(t, err)
		require.Len(t, cats, 2)
		assert.Equal(t, "Databases", cats[0].Name)
		assert.Equal(t, "Programming", cats[1].Name)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		svc, _ := newService(t)
		mustCreateCategory(t, svc, "Programming")

		_, err := svc.CreateCategory(ctx, catalog.CreateCategoryInput{Name: "Programming"})
		assert.True(t, catalog.IsCode(err, catalog.CodeCategoryExists))
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.CreateCategory(ctx, catalog.CreateCategoryInput{})
		assert.True(t, catalog.IsCode(err, catalog.CodeInvalidParameter))
	})
}

func TestDeleteCategory(t *testing.T) {
	ctx := context.Background()

	t.Run("unreferenced category is deleted", func(t *testing.T) {
		svc, _ := newService(t)
		c := mustCreateCategory(t, svc, "Programming")

		require.NoError(t, svc.DeleteCategory(ctx, c.ID))

		cats, err := svc.ListCategories(ctx)
		require.NoError(t, err)
		assert.Empty(t, cats)
	})

	t.Run("referenced category is kept and the count reported", func(t *testing.T) {
		svc, _ := newService(t)
		c := mustCreateCategory(t, svc, "Programming")

		for _, isbn := range []string{
			"978-1-61729-120-3", "978-7-121-37213-0", "978-0-13-419044-0",
		} {
			mustCreateBook(t, svc, catalog.CreateBookInput{
				Title: "Book", Author: "Author", Price: price("10"),
				ISBN: isbn, CategoryIDs: []string{c.ID},
			})
		}

		err := svc.DeleteCategory(ctx, c.ID)
		var be *catalog.Error
		require.ErrorAs(t, err, &be)
		assert.Equal(t, catalog.CodeCategoryHasBooks, be.Code)
		assert.Equal(t, 3, be.BookCount)

		cats, listErr := svc.ListCategories(ctx)
		require.NoError(t, listErr)
		assert.Len(t, cats, 1)
	})

	t.Run("unknown category", func(t *testing.T) {
		svc, _ := newService(t)
		err := svc.DeleteCategory(ctx, "nope")
		assert.True(t, catalog.IsCode(err, catalog.CodeCategoryNotFound))
	})
}
