package catalog

import (
	"context"
)

// Page is limit/offset pagination for the plain book listing.
type Page struct {
	Limit  int
	Offset int
}

// BookRepository defines the contract for book storage.
type BookRepository interface {
	Get(ctx context.Context, id string) (Book, error)
	GetByISBN(ctx context.Context, isbn string) (Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	List(ctx context.Context, p Page) ([]Book, int, error)
	Search(ctx context.Context, f Filter) ([]Book, error)
	// SearchTitleOrAuthor matches books whose title contains title OR whose
	// author contains author, case-insensitive. An empty term matches all.
	SearchTitleOrAuthor(ctx context.Context, title, author string) ([]Book, error)
	// Save persists the book and returns the stored copy; an empty ID means
	// insert and triggers id assignment.
	Save(ctx context.Context, b Book) (Book, error)
}

// CategoryRepository defines the contract for category storage.
type CategoryRepository interface {
	Get(ctx context.Context, id string) (Category, error)
	List(ctx context.Context) ([]Category, error)
	// FindAllByIDs returns the categories whose ids are in ids; unknown ids
	// are simply absent from the result.
	FindAllByIDs(ctx context.Context, ids []string) ([]Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, c Category) (Category, error)
	Delete(ctx context.Context, id string) error
	// CountBooksReferencing returns how many books reference the category.
	CountBooksReferencing(ctx context.Context, id string) (int, error)
}
