package memory

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/domain/category"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsRepo(t *testing.T) {
	r := NewAccountsRepo()
	ctx := context.Background()

	older := account.Account{ID: "1", Email: "b@example.com", CreatedAt: time.Unix(100, 0)}
	newer := account.Account{ID: "2", Email: "a@example.com", CreatedAt: time.Unix(200, 0)}

	require.NoError(t, r.Insert(ctx, newer))
	require.NoError(t, r.Insert(ctx, older))
	require.ErrorIs(t, r.Insert(ctx, account.Account{ID: "3", Email: "a@example.com"}), account.ErrDuplicateEmail)

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID, "oldest first")

	// update must target the same record
	require.ErrorIs(t, r.Update(ctx, account.Account{ID: "9", Email: "a@example.com"}), account.ErrNotFound)

	newer.Name = "renamed"
	require.NoError(t, r.Update(ctx, newer))

	got, err := r.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	require.NoError(t, r.DeleteByEmail(ctx, "a@example.com"))
	require.ErrorIs(t, r.DeleteByEmail(ctx, "a@example.com"), account.ErrNotFound)
}

func TestAccountsRepo_HonorsContext(t *testing.T) {
	r := NewAccountsRepo()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, r.Insert(ctx, account.Account{Email: "a@example.com"}), context.Canceled)
	require.ErrorIs(t, r.Ping(ctx), context.Canceled)
}

func TestCategoriesRepo_SlugIndex(t *testing.T) {
	r := NewCategoriesRepo()
	ctx := context.Background()

	books := category.Category{ID: "1", Name: "Books", Slug: "books"}
	music := category.Category{ID: "2", Name: "Music", Slug: "music"}

	require.NoError(t, r.Insert(ctx, books))
	require.NoError(t, r.Insert(ctx, music))
	require.ErrorIs(t, r.Insert(ctx, category.Category{ID: "3", Name: "BOOKS", Slug: "books"}), category.ErrDuplicateName)

	// renaming onto a taken slug fails, renaming onto a free one moves the index
	require.ErrorIs(t, r.Update(ctx, category.Category{ID: "1", Name: "Music", Slug: "music"}), category.ErrDuplicateName)
	require.NoError(t, r.Update(ctx, category.Category{ID: "1", Name: "Novels", Slug: "novels"}))

	_, err := r.GetBySlug(ctx, "books")
	require.ErrorIs(t, err, category.ErrNotFound)

	got, err := r.GetBySlug(ctx, "novels")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)

	require.NoError(t, r.Delete(ctx, "1"))
	require.ErrorIs(t, r.Delete(ctx, "1"), category.ErrNotFound)

	// the slug is free again after delete
	require.NoError(t, r.Insert(ctx, category.Category{ID: "4", Name: "Novels", Slug: "novels"}))
}
