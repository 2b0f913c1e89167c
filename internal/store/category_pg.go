package store

import (
	"context"
	"errors"

	"bookcatalog/internal/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryPG is the Postgres implementation of catalog.CategoryRepository.
type CategoryPG struct {
	db *pgxpool.Pool
}

// NewCategoryPG creates a category repository over the given pool.
func NewCategoryPG(db *pgxpool.Pool) *CategoryPG {
	return &CategoryPG{db: db}
}

func (r *CategoryPG) Get(ctx context.Context, id string) (catalog.Category, error) {
	var c catalog.Category
	err := r.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Category{}, catalog.ErrRecordNotFound
		}
		return catalog.Category{}, err
	}
	return c, nil
}

func (r *CategoryPG) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

func (r *CategoryPG) FindAllByIDs(ctx context.Context, ids []string) ([]catalog.Category, error) {
	if len(ids) == 0 {
		return []catalog.Category{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(description, '') FROM categories WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

func (r *CategoryPG) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

func (r *CategoryPG) Save(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	if c.ID == "" {
		const insert = `
			INSERT INTO categories (id, name, description, created_at, updated_at)
			VALUES (gen_random_uuid(), $1, NULLIF($2, ''), NOW(), NOW())
			RETURNING id`
		if err := r.db.QueryRow(ctx, insert, c.Name, c.Description).Scan(&c.ID); err != nil {
			return catalog.Category{}, err
		}
		return c, nil
	}

	const update = `
		UPDATE categories
		SET name = $1, description = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $3`
	tag, err := r.db.Exec(ctx, update, c.Name, c.Description, c.ID)
	if err != nil {
		return catalog.Category{}, err
	}
	if tag.RowsAffected() == 0 {
		return catalog.Category{}, catalog.ErrRecordNotFound
	}
	return c, nil
}

func (r *CategoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrRecordNotFound
	}
	return nil
}

func (r *CategoryPG) CountBooksReferencing(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM book_categories WHERE category_id = $1`, id).Scan(&count)
	return count, err
}

func collectCategories(rows pgx.Rows) ([]catalog.Category, error) {
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
