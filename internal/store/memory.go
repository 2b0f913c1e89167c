package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"bookcatalog/internal/catalog"

	"github.com/google/uuid"
)

// Memory is an in-memory store backing both catalog repositories.
// It evaluates catalog.Filter directly, which makes it the reference
// semantics for the SQL adapter, and the backing store for tests.
type Memory struct {
	mu         sync.RWMutex
	books      map[string]catalog.Book
	categories map[string]catalog.Category
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		books:      make(map[string]catalog.Book),
		categories: make(map[string]catalog.Category),
	}
}

// Books returns the book repository view of the store.
func (m *Memory) Books() catalog.BookRepository {
	return &memoryBooks{m}
}

// Categories returns the category repository view of the store.
func (m *Memory) Categories() catalog.CategoryRepository {
	return &memoryCategories{m}
}

type memoryBooks struct {
	s *Memory
}

func (r *memoryBooks) Get(ctx context.Context, id string) (catalog.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.books[id]
	if !ok {
		return catalog.Book{}, catalog.ErrRecordNotFound
	}
	return cloneBook(b), nil
}

func (r *memoryBooks) GetByISBN(ctx context.Context, isbn string) (catalog.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.books {
		if b.ISBN == isbn {
			return cloneBook(b), nil
		}
	}
	return catalog.Book{}, catalog.ErrRecordNotFound
}

func (r *memoryBooks) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.books {
		if b.ISBN == isbn {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryBooks) List(ctx context.Context, p catalog.Page) ([]catalog.Book, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	all := r.s.sortedBooks()
	total := len(all)

	if p.Offset >= len(all) {
		return []catalog.Book{}, total, nil
	}
	all = all[p.Offset:]
	if p.Limit > 0 && p.Limit < len(all) {
		all = all[:p.Limit]
	}
	return all, total, nil
}

func (r *memoryBooks) Search(ctx context.Context, f catalog.Filter) ([]catalog.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]catalog.Book, 0)
	for _, b := range r.s.sortedBooks() {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memoryBooks) SearchTitleOrAuthor(ctx context.Context, title, author string) ([]catalog.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	title = strings.ToLower(title)
	author = strings.ToLower(author)

	out := make([]catalog.Book, 0)
	for _, b := range r.s.sortedBooks() {
		if strings.Contains(strings.ToLower(b.Title), title) ||
			strings.Contains(strings.ToLower(b.Author), author) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memoryBooks) Save(ctx context.Context, b catalog.Book) (catalog.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	} else if _, ok := r.s.books[b.ID]; !ok {
		return catalog.Book{}, catalog.ErrRecordNotFound
	}
	r.s.books[b.ID] = cloneBook(b)
	return cloneBook(b), nil
}

type memoryCategories struct {
	s *Memory
}

func (r *memoryCategories) Get(ctx context.Context, id string) (catalog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return catalog.Category{}, catalog.ErrRecordNotFound
	}
	return c, nil
}

func (r *memoryCategories) List(ctx context.Context) ([]catalog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]catalog.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryCategories) FindAllByIDs(ctx context.Context, ids []string) ([]catalog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]catalog.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memoryCategories) ExistsByName(ctx context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryCategories) Save(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	} else if _, ok := r.s.categories[c.ID]; !ok {
		return catalog.Category{}, catalog.ErrRecordNotFound
	}
	r.s.categories[c.ID] = c
	return c, nil
}

func (r *memoryCategories) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return catalog.ErrRecordNotFound
	}
	delete(r.s.categories, id)
	return nil
}

func (r *memoryCategories) CountBooksReferencing(ctx context.Context, id string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	count := 0
	for _, b := range r.s.books {
		if b.HasCategory(id) {
			count++
		}
	}
	return count, nil
}

// sortedBooks returns clones ordered by title; callers hold the lock.
func (m *Memory) sortedBooks() []catalog.Book {
	out := make([]catalog.Book, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, cloneBook(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out
}

func cloneBook(b catalog.Book) catalog.Book {
	if b.Categories != nil {
		cats := make([]catalog.Category, len(b.Categories))
		copy(cats, b.Categories)
		b.Categories = cats
	}
	return b
}
