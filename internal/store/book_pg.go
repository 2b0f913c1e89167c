package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookcatalog/internal/catalog"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const dialectPostgres = "postgres"

const bookColumns = `id, title, author, price, publish_date, isbn, status`

// BookPG is the Postgres implementation of catalog.BookRepository.
type BookPG struct {
	db *pgxpool.Pool
}

// NewBookPG creates a book repository over the given pool.
func NewBookPG(db *pgxpool.Pool) *BookPG {
	return &BookPG{db: db}
}

func (r *BookPG) Get(ctx context.Context, id string) (catalog.Book, error) {
	return r.getOne(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
}

func (r *BookPG) GetByISBN(ctx context.Context, isbn string) (catalog.Book, error) {
	return r.getOne(ctx, `SELECT `+bookColumns+` FROM books WHERE isbn = $1`, isbn)
}

func (r *BookPG) getOne(ctx context.Context, query, arg string) (catalog.Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Book{}, catalog.ErrRecordNotFound
		}
		return catalog.Book{}, err
	}
	books := []catalog.Book{b}
	if err := r.attachCategories(ctx, books); err != nil {
		return catalog.Book{}, err
	}
	return books[0], nil
}

func (r *BookPG) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists)
	return exists, err
}

func (r *BookPG) List(ctx context.Context, p catalog.Page) ([]catalog.Book, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + bookColumns + ` FROM books ORDER BY title LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachCategories(ctx, books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *BookPG) Search(ctx context.Context, f catalog.Filter) ([]catalog.Book, error) {
	query, args, err := buildSearchSQL(f)
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// buildSearchSQL compiles the in-memory filter semantics into Postgres SQL.
// It must agree with catalog.Filter.Match.
func buildSearchSQL(f catalog.Filter) (string, []interface{}, error) {
	ds := goqu.Dialect(dialectPostgres).
		From(goqu.T("books")).
		Select(
			goqu.C("id"), goqu.C("title"), goqu.C("author"), goqu.C("price"),
			goqu.C("publish_date"), goqu.C("isbn"), goqu.C("status"),
		).
		Order(goqu.C("title").Asc())

	if f.TitleContains != "" {
		ds = ds.Where(goqu.C("title").ILike("%" + f.TitleContains + "%"))
	}
	if f.AuthorContains != "" {
		ds = ds.Where(goqu.C("author").ILike("%" + f.AuthorContains + "%"))
	}
	if f.MinPrice != nil {
		ds = ds.Where(goqu.C("price").Gte(f.MinPrice.String()))
	}
	if f.MaxPrice != nil {
		ds = ds.Where(goqu.C("price").Lte(f.MaxPrice.String()))
	}
	if f.Status != nil {
		ds = ds.Where(goqu.C("status").Eq(string(*f.Status)))
	}
	if len(f.CategoryIDs) > 0 {
		sub := goqu.Dialect(dialectPostgres).
			From(goqu.T("book_categories")).
			Select(goqu.C("book_id")).
			Where(goqu.C("category_id").In(f.CategoryIDs))
		ds = ds.Where(goqu.C("id").In(sub))
	}

	return ds.Prepared(true).ToSQL()
}

func (r *BookPG) SearchTitleOrAuthor(ctx context.Context, title, author string) ([]catalog.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE title ILIKE $1 OR author ILIKE $2 ORDER BY title`
	rows, err := r.db.Query(ctx, query, "%"+title+"%", "%"+author+"%")
	if err != nil {
		return nil, err
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachCategories(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *BookPG) Save(ctx context.Context, b catalog.Book) (catalog.Book, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return catalog.Book{}, err
	}
	defer tx.Rollback(ctx)

	if b.ID == "" {
		const insert = `
			INSERT INTO books (id, title, author, price, publish_date, isbn, status, created_at, updated_at)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, NOW(), NOW())
			RETURNING id`
		if err := tx.QueryRow(ctx, insert,
			b.Title, b.Author, b.Price, b.PublishDate, b.ISBN, string(b.Status),
		).Scan(&b.ID); err != nil {
			return catalog.Book{}, err
		}
	} else {
		const update = `
			UPDATE books
			SET title = $1, author = $2, price = $3, publish_date = $4, isbn = $5, status = $6, updated_at = NOW()
			WHERE id = $7`
		tag, err := tx.Exec(ctx, update,
			b.Title, b.Author, b.Price, b.PublishDate, b.ISBN, string(b.Status), b.ID,
		)
		if err != nil {
			return catalog.Book{}, err
		}
		if tag.RowsAffected() == 0 {
			return catalog.Book{}, catalog.ErrRecordNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM book_categories WHERE book_id = $1`, b.ID); err != nil {
			return catalog.Book{}, err
		}
	}

	for _, c := range b.Categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO book_categories (book_id, category_id) VALUES ($1, $2)`,
			b.ID, c.ID,
		); err != nil {
			return catalog.Book{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return catalog.Book{}, err
	}
	return b, nil
}

// attachCategories loads the categories of every book in one round trip.
func (r *BookPG) attachCategories(ctx context.Context, books []catalog.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}

	const query = `
		SELECT bc.book_id, c.id, c.name, COALESCE(c.description, '')
		FROM book_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.book_id = ANY($1)
		ORDER BY c.name`
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	byBook := make(map[string][]catalog.Category)
	for rows.Next() {
		var bookID string
		var c catalog.Category
		if err := rows.Scan(&bookID, &c.ID, &c.Name, &c.Description); err != nil {
			return err
		}
		byBook[bookID] = append(byBook[bookID], c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range books {
		books[i].Categories = byBook[books[i].ID]
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (catalog.Book, error) {
	var (
		b           catalog.Book
		price       decimal.Decimal
		publishDate *time.Time
		status      string
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &price, &publishDate, &b.ISBN, &status); err != nil {
		return catalog.Book{}, err
	}
	b.Price = price
	b.PublishDate = publishDate
	b.Status = catalog.Status(status)
	return b, nil
}

func collectBooks(rows pgx.Rows) ([]catalog.Book, error) {
	defer rows.Close()

	var books []catalog.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
