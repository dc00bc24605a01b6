package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/storefront/internal/domain/category"
)

type CategoriesRepo struct {
	mu     sync.RWMutex
	items  map[string]category.Category // {"id": category}
	bySlug map[string]string            // {"slug": "id"}
}

func NewCategoriesRepo() *CategoriesRepo {
	return &CategoriesRepo{
		items:  make(map[string]category.Category),
		bySlug: make(map[string]string),
	}
}

func (r *CategoriesRepo) Insert(ctx context.Context, c category.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.bySlug[c.Slug]; taken {
		return category.ErrDuplicateName
	}

	r.items[c.ID] = c
	r.bySlug[c.Slug] = c.ID

	return nil
}

func (r *CategoriesRepo) GetByID(ctx context.Context, id string) (category.Category, error) {
	if err := ctx.Err(); err != nil {
		return category.Category{}, err
	}

	r.mu.RLock()
	c, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return category.Category{}, category.ErrNotFound
	}

	return c, nil
}

func (r *CategoriesRepo) GetBySlug(ctx context.Context, slug string) (category.Category, error) {
	if err := ctx.Err(); err != nil {
		return category.Category{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySlug[slug]
	if !ok {
		return category.Category{}, category.ErrNotFound
	}

	return r.items[id], nil
}

func (r *CategoriesRepo) Update(ctx context.Context, c category.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[c.ID]
	if !ok {
		return category.ErrNotFound
	}

	if owner, taken := r.bySlug[c.Slug]; taken && owner != c.ID {
		return category.ErrDuplicateName
	}

	delete(r.bySlug, current.Slug)
	r.items[c.ID] = c
	r.bySlug[c.Slug] = c.ID

	return nil
}

func (r *CategoriesRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]
	if !ok {
		return category.ErrNotFound
	}

	delete(r.items, id)
	delete(r.bySlug, c.Slug)

	return nil
}

func (r *CategoriesRepo) List(ctx context.Context) ([]category.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	out := make([]category.Category, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, c)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}
