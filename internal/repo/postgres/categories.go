package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/storefront/internal/domain/category"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoriesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCategoriesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CategoriesRepo {
	return &CategoriesRepo{pool: pool, prom: prom}
}

func (r *CategoriesRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CategoriesRepo) Insert(ctx context.Context, c category.Category) error {
	err := r.observe("categories.insert", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO categories (id, name, slug, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
			c.ID, c.Name, c.Slug, c.CreatedAt, c.UpdatedAt,
		)
		return e
	})

	if isUniqueViolation(err, categoriesSlugKey) {
		return category.ErrDuplicateName
	}

	return err
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id string) (category.Category, error) {
	// ids are uuids; anything else cannot exist and would only provoke a cast error
	if _, err := uuid.Parse(id); err != nil {
		return category.Category{}, category.ErrNotFound
	}

	return r.getOne(ctx, "categories.get_by_id", `WHERE id = $1`, id)
}

func (r *CategoriesRepo) GetBySlug(ctx context.Context, slug string) (category.Category, error) {
	return r.getOne(ctx, "categories.get_by_slug", `WHERE slug = $1`, slug)
}

func (r *CategoriesRepo) getOne(ctx context.Context, op, where string, arg any) (category.Category, error) {
	var c category.Category

	err := r.observe(op, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT id, name, slug, created_at, updated_at FROM categories `+where, arg,
		).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, category.ErrNotFound
		}
		return category.Category{}, err
	}

	return c, nil
}

func (r *CategoriesRepo) Update(ctx context.Context, c category.Category) error {
	var affected int64

	err := r.observe("categories.update", func() error {
		tag, e := r.pool.Exec(ctx,
			`UPDATE categories SET name = $2, slug = $3, updated_at = $4 WHERE id = $1`,
			c.ID, c.Name, c.Slug, c.UpdatedAt,
		)
		affected = tag.RowsAffected()
		return e
	})

	if isUniqueViolation(err, categoriesSlugKey) {
		return category.ErrDuplicateName
	}

	if err != nil {
		return err
	}

	if affected == 0 {
		return category.ErrNotFound
	}

	return nil
}

func (r *CategoriesRepo) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return category.ErrNotFound
	}

	var affected int64

	err := r.observe("categories.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return category.ErrNotFound
	}

	return nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	out := []category.Category{}

	err := r.observe("categories.list", func() error {
		rows, e := r.pool.Query(ctx, `SELECT id, name, slug, created_at, updated_at FROM categories ORDER BY name`)
		if e != nil {
			return e
		}
		defer rows.Close()

		for rows.Next() {
			var c category.Category
			if e := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); e != nil {
				return e
			}
			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
