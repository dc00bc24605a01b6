package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/domain/category"
	"github.com/gin-gonic/gin"
)

type CategoryService interface {
	Create(ctx context.Context, name string) (category.Category, error)
	Update(ctx context.Context, id, name string) (category.Category, error)
	Delete(ctx context.Context, id string) error
	GetBySlug(ctx context.Context, slug string) (category.Category, error)
	List(ctx context.Context) ([]category.Category, error)
}

// categoryListing is what the list cache holds: the body and its ETag.
type categoryListing struct {
	body gin.H
	etag string
}

const listKey = "categories:all"

type CategoriesHandler struct {
	categories CategoryService
	cache      *cache.Cache[categoryListing]
	log        *slog.Logger
}

// NewCategoriesHandler caches the category listing for listTTL; writes
// through this handler drop the cached copy.
func NewCategoriesHandler(categories CategoryService, listTTL time.Duration, log *slog.Logger) *CategoriesHandler {
	if log == nil {
		log = slog.Default()
	}

	return &CategoriesHandler{
		categories: categories,
		cache:      cache.New[categoryListing](listTTL),
		log:        log,
	}
}

func (h *CategoriesHandler) CreateCategory(ctx *gin.Context) {
	var req category.CreateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	c, err := h.categories.Create(cctx, req.Name)

	if err != nil {
		h.respondCategoryError(ctx, err, "Could not create category")
		return
	}

	h.cache.Delete(listKey)

	ctx.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "New category created",
		"category": c,
	})
}

func (h *CategoriesHandler) UpdateCategory(ctx *gin.Context) {
	var req category.UpdateCategoryRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	c, err := h.categories.Update(cctx, ctx.Param("id"), req.Name)

	if err != nil {
		h.respondCategoryError(ctx, err, "Could not update category")
		return
	}

	h.cache.Delete(listKey)

	ctx.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Category updated successfully",
		"category": c,
	})
}

func (h *CategoriesHandler) ListCategories(ctx *gin.Context) {
	if cached, ok := h.cache.Get(listKey); ok {
		respondWithETag(ctx, cached.etag, cached.body)
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	items, err := h.categories.List(cctx)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list categories failed", "err", err)
		RespondInternal(ctx, "Could not list categories")
		return
	}

	body := gin.H{
		"items": items,
		"count": len(items),
	}
	listing := categoryListing{body: body, etag: etagFor(body)}
	h.cache.Set(listKey, listing)

	respondWithETag(ctx, listing.etag, listing.body)
}

func (h *CategoriesHandler) GetCategoryBySlug(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 2*time.Second)
	defer cancel()

	c, err := h.categories.GetBySlug(cctx, ctx.Param("slug"))

	if err != nil {
		h.respondCategoryError(ctx, err, "Could not fetch category")
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CategoriesHandler) DeleteCategory(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	err := h.categories.Delete(cctx, ctx.Param("id"))

	if err != nil {
		h.respondCategoryError(ctx, err, "Could not delete category")
		return
	}

	h.cache.Delete(listKey)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Category deleted successfully",
	})
}

func (h *CategoriesHandler) respondCategoryError(ctx *gin.Context, err error, internalMsg string) {
	switch {
	case respondValidation(ctx, err):
	case errors.Is(err, category.ErrDuplicateName):
		RespondConflict(ctx, "category_exists", "Category already exists")
	case errors.Is(err, category.ErrNotFound):
		RespondNotFound(ctx, "Category not found")
	default:
		h.log.ErrorContext(ctx.Request.Context(), "category operation failed", "err", err)
		RespondInternal(ctx, internalMsg)
	}
}
