package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/storefront/internal/actorctx"
	"github.com/geocoder89/storefront/internal/domain/category"
	"github.com/geocoder89/storefront/internal/domain/validation"
)

// CategoryRepository must enforce a unique index on slug and report a
// collision as category.ErrDuplicateName.
type CategoryRepository interface {
	Insert(ctx context.Context, c category.Category) error
	GetByID(ctx context.Context, id string) (category.Category, error)
	GetBySlug(ctx context.Context, slug string) (category.Category, error)
	Update(ctx context.Context, c category.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]category.Category, error)
}

type CategoryStore struct {
	repo CategoryRepository
	log  *slog.Logger
}

func NewCategoryStore(repo CategoryRepository, log *slog.Logger) *CategoryStore {
	if log == nil {
		log = slog.Default()
	}

	return &CategoryStore{repo: repo, log: log}
}

// Create derives the slug from name and inserts the category. Names are unique
// case-insensitively because the slug is.
func (s *CategoryStore) Create(ctx context.Context, name string) (category.Category, error) {
	if err := validateName(name); err != nil {
		return category.Category{}, err
	}

	c := category.New(name)

	if err := classify("categories.insert", s.repo.Insert(ctx, c)); err != nil {
		if !errors.Is(err, category.ErrDuplicateName) {
			s.log.WarnContext(ctx, "category insert failed", "err", err)
		}
		return category.Category{}, err
	}

	s.log.InfoContext(ctx, "category created", append([]any{"category_id", c.ID, "slug", c.Slug}, actorctx.LogAttrs(ctx)...)...)

	return c, nil
}

// Update renames the category and re-derives its slug.
func (s *CategoryStore) Update(ctx context.Context, id, name string) (category.Category, error) {
	if err := validateName(name); err != nil {
		return category.Category{}, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return category.Category{}, classify("categories.get_by_id", err)
	}

	c.Name = strings.TrimSpace(name)
	c.Slug = category.Slugify(c.Name)
	c.UpdatedAt = time.Now().UTC()

	if err := classify("categories.update", s.repo.Update(ctx, c)); err != nil {
		return category.Category{}, err
	}

	return c, nil
}

func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	if err := classify("categories.delete", s.repo.Delete(ctx, id)); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "category deleted", append([]any{"category_id", id}, actorctx.LogAttrs(ctx)...)...)

	return nil
}

func (s *CategoryStore) GetBySlug(ctx context.Context, slug string) (category.Category, error) {
	c, err := s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return category.Category{}, classify("categories.get_by_slug", err)
	}

	return c, nil
}

func (s *CategoryStore) List(ctx context.Context) ([]category.Category, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, classify("categories.list", err)
	}

	return items, nil
}

func validateName(name string) error {
	req := category.CreateCategoryRequest{Name: strings.TrimSpace(name)}

	if err := validation.Struct("category", req); err != nil {
		return err
	}

	// a name made only of punctuation has no usable slug
	if category.Slugify(req.Name) == "" {
		return &validation.Error{
			Entity: "category",
			Fields: []validation.FieldError{{
				Field:   "name",
				Rule:    "slug",
				Message: "must contain at least one letter or digit",
			}},
		}
	}

	return nil
}
