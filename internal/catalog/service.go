package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Service implements the catalog business rules: ISBN uniqueness,
// category-reference validation and status-transition legality. Storage
// is delegated to the repositories; each call is assumed to run inside a
// single unit of work provided by the store.
type Service struct {
	books      BookRepository
	categories CategoryRepository
}

// NewService creates a new catalog service.
func NewService(books BookRepository, categories CategoryRepository) *Service {
	return &Service{books: books, categories: categories}
}

// CreateBook validates the input, enforces ISBN uniqueness and category
// existence, and persists a new book. The stored book always starts
// AVAILABLE regardless of caller input.
func (s *Service) CreateBook(ctx context.Context, in CreateBookInput) (Book, error) {
	if err := validateInput(in); err != nil {
		return Book{}, err
	}
	if in.Price.IsNegative() {
		return Book{}, errInvalidParameter("price must not be negative")
	}

	taken, err := s.books.ExistsByISBN(ctx, in.ISBN)
	if err != nil {
		return Book{}, fmt.Errorf("check isbn: %w", err)
	}
	if taken {
		return Book{}, errDuplicateISBN(in.ISBN)
	}

	var cats []Category
	if len(in.CategoryIDs) > 0 {
		cats, err = s.resolveCategories(ctx, in.CategoryIDs)
		if err != nil {
			return Book{}, err
		}
	}

	b := Book{
		Title:       in.Title,
		Author:      in.Author,
		Price:       *in.Price,
		PublishDate: in.PublishDate,
		ISBN:        in.ISBN,
		Status:      StatusAvailable,
		Categories:  cats,
	}
	saved, err := s.books.Save(ctx, b)
	if err != nil {
		return Book{}, fmt.Errorf("save book: %w", err)
	}
	return saved, nil
}

// GetBook returns a book by id.
func (s *Service) GetBook(ctx context.Context, id string) (Book, error) {
	b, err := s.books.Get(ctx, id)
	if err != nil {
		return Book{}, s.mapBookErr(err, id)
	}
	return b, nil
}

// GetBookByISBN returns a book by its ISBN.
func (s *Service) GetBookByISBN(ctx context.Context, isbn string) (Book, error) {
	b, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return Book{}, s.mapBookErr(err, isbn)
	}
	return b, nil
}

// ListBooks returns a page of the catalog plus the total count.
func (s *Service) ListBooks(ctx context.Context, p Page) ([]Book, int, error) {
	return s.books.List(ctx, p)
}

// UpdateBook applies a partial patch. Only present fields change; an ISBN
// change re-runs the uniqueness check, a status change runs the transition
// table, a non-empty category set replaces the whole set after resolution.
func (s *Service) UpdateBook(ctx context.Context, id string, in UpdateBookInput) (Book, error) {
	if err := validateInput(in); err != nil {
		return Book{}, err
	}

	b, err := s.books.Get(ctx, id)
	if err != nil {
		return Book{}, s.mapBookErr(err, id)
	}

	if in.Title != nil {
		b.Title = *in.Title
	}
	if in.Author != nil {
		b.Author = *in.Author
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return Book{}, errInvalidParameter("price must not be negative")
		}
		b.Price = *in.Price
	}
	if in.PublishDate != nil {
		b.PublishDate = in.PublishDate
	}

	if in.ISBN != nil && *in.ISBN != b.ISBN {
		taken, err := s.books.ExistsByISBN(ctx, *in.ISBN)
		if err != nil {
			return Book{}, fmt.Errorf("check isbn: %w", err)
		}
		if taken {
			return Book{}, errDuplicateISBN(*in.ISBN)
		}
		b.ISBN = *in.ISBN
	}

	if in.Status != nil && *in.Status != b.Status {
		if _, ok := ParseStatus(string(*in.Status)); !ok {
			return Book{}, errInvalidParameter(fmt.Sprintf("unknown status: %s", *in.Status))
		}
		if !b.Status.CanTransitionTo(*in.Status) {
			return Book{}, errInvalidTransition(b.Status, *in.Status)
		}
		b.Status = *in.Status
	}

	if len(in.CategoryIDs) > 0 {
		cats, err := s.resolveCategories(ctx, in.CategoryIDs)
		if err != nil {
			return Book{}, err
		}
		b.Categories = cats
	}

	saved, err := s.books.Save(ctx, b)
	if err != nil {
		return Book{}, fmt.Errorf("save book: %w", err)
	}
	return saved, nil
}

// SearchBooks runs the structured AND filter. An empty filter returns the
// whole catalog; an empty result is not an error.
func (s *Service) SearchBooks(ctx context.Context, f Filter) ([]Book, error) {
	return s.books.Search(ctx, f)
}

// SearchByTitleOrAuthor is the keyword search: a book matches if its title
// contains title OR its author contains author (case-insensitive). Absent
// terms are treated as empty strings.
func (s *Service) SearchByTitleOrAuthor(ctx context.Context, title, author string) ([]Book, error) {
	return s.books.SearchTitleOrAuthor(ctx, title, author)
}

// BooksByPriceRange returns books priced within [min, max] inclusive.
// Both bounds are required and min must not exceed max.
func (s *Service) BooksByPriceRange(ctx context.Context, min, max *decimal.Decimal) ([]Book, error) {
	if min == nil || max == nil {
		return nil, errInvalidParameter("both price bounds are required")
	}
	if min.GreaterThan(*max) {
		return nil, errInvalidParameter("min price must not exceed max price")
	}
	return s.books.Search(ctx, Filter{MinPrice: min, MaxPrice: max})
}

// BooksByCategory returns all books referencing the category.
func (s *Service) BooksByCategory(ctx context.Context, categoryID string) ([]Book, error) {
	if _, err := s.categories.Get(ctx, categoryID); err != nil {
		return nil, s.mapCategoryErr(err, categoryID)
	}
	return s.books.Search(ctx, Filter{CategoryIDs: []string{categoryID}})
}

// BooksByAuthor returns books whose author contains the given term.
func (s *Service) BooksByAuthor(ctx context.Context, author string) ([]Book, error) {
	author = strings.TrimSpace(author)
	if author == "" {
		return nil, errInvalidParameter("author must not be blank")
	}
	return s.books.Search(ctx, Filter{AuthorContains: author})
}

// AvailableBooks returns the books currently in AVAILABLE status.
func (s *Service) AvailableBooks(ctx context.Context) ([]Book, error) {
	st := StatusAvailable
	return s.books.Search(ctx, Filter{Status: &st})
}

// CreateCategory persists a new category with a unique name.
func (s *Service) CreateCategory(ctx context.Context, in CreateCategoryInput) (Category, error) {
	if err := validateInput(in); err != nil {
		return Category{}, err
	}
	taken, err := s.categories.ExistsByName(ctx, in.Name)
	if err != nil {
		return Category{}, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return Category{}, errCategoryExists(in.Name)
	}
	saved, err := s.categories.Save(ctx, Category{Name: in.Name, Description: in.Description})
	if err != nil {
		return Category{}, fmt.Errorf("save category: %w", err)
	}
	return saved, nil
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.categories.List(ctx)
}

// DeleteCategory removes a category that no book references anymore.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.categories.Get(ctx, id); err != nil {
		return s.mapCategoryErr(err, id)
	}
	count, err := s.categories.CountBooksReferencing(ctx, id)
	if err != nil {
		return fmt.Errorf("count referencing books: %w", err)
	}
	if count > 0 {
		return errCategoryHasBooks(id, count)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// resolveCategories batch-looks-up the requested ids and fails as a whole
// when any is unknown, reporting the missing ids sorted ascending.
func (s *Service) resolveCategories(ctx context.Context, ids []string) ([]Category, error) {
	unique := dedupe(ids)
	found, err := s.categories.FindAllByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}
	if len(found) != len(unique) {
		present := make(map[string]bool, len(found))
		for _, c := range found {
			present[c.ID] = true
		}
		var missing []string
		for _, id := range unique {
			if !present[id] {
				missing = append(missing, id)
			}
		}
		sort.Strings(missing)
		return nil, errCategoryNotFound(missing)
	}
	return found, nil
}

func (s *Service) mapBookErr(err error, id string) error {
	if errors.Is(err, ErrRecordNotFound) {
		return errBookNotFound(id)
	}
	return fmt.Errorf("load book: %w", err)
}

func (s *Service) mapCategoryErr(err error, id string) error {
	if errors.Is(err, ErrRecordNotFound) {
		return errCategoryNotFound([]string{id})
	}
	return fmt.Errorf("load category: %w", err)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
