package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/gin-gonic/gin"
)

type AccountAdmin interface {
	List(ctx context.Context) ([]account.Account, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type UsersHandler struct {
	accounts AccountAdmin
	log      *slog.Logger
}

func NewUsersHandler(accounts AccountAdmin, log *slog.Logger) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}

	return &UsersHandler{accounts: accounts, log: log}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	items, err := h.accounts.List(cctx)

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list users failed", "err", err)
		RespondInternal(ctx, "Could not list users")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

// DeleteUser removes the account named by the :email path parameter.
func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	email := ctx.Param("email")

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	err := h.accounts.DeleteByEmail(cctx, email)

	if err != nil {
		switch {
		case respondValidation(ctx, err):
		case errors.Is(err, account.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		default:
			h.log.ErrorContext(ctx.Request.Context(), "delete user failed", "err", err)
			RespondError(ctx, http.StatusInternalServerError, "internal_error", "Error deleting user", gin.H{
				"reason": err.Error(),
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}
