package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/gin-gonic/gin"
)

type AccountRegistrar interface {
	Create(ctx context.Context, req account.CreateAccountRequest) (account.Account, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (account.Account, error)
	ResetPassword(ctx context.Context, req account.ResetPasswordRequest) error
}

type ProfileUpdater interface {
	UpdateProfile(ctx context.Context, email string, req account.UpdateProfileRequest) (account.Account, error)
}

// AccountService is everything the auth routes need from the account store.
type AccountService interface {
	AccountRegistrar
	Authenticator
	ProfileUpdater
}

type TokenIssuer interface {
	GenerateAccessToken(userID, email string, role int) (string, error)
}

type AuthHandler struct {
	accounts AccountService
	jwt      TokenIssuer
	metrics  *observability.Prom
	log      *slog.Logger
}

func NewAuthHandler(accounts AccountService, jwt TokenIssuer, metrics *observability.Prom, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}

	return &AuthHandler{
		accounts: accounts,
		jwt:      jwt,
		metrics:  metrics,
		log:      log,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req account.CreateAccountRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// role is never client-controlled
	req.Role = account.RoleUser

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	a, err := h.accounts.Create(cctx, req)

	if err != nil {
		switch {
		case respondValidation(ctx, err):
			h.metrics.ObserveAuth("register", "rejected")
		case errors.Is(err, account.ErrDuplicateEmail):
			h.metrics.ObserveAuth("register", "rejected")
			RespondConflict(ctx, "email_taken", "Email is already registered.")
		default:
			h.metrics.ObserveAuth("register", "error")
			h.log.ErrorContext(ctx.Request.Context(), "register failed", "err", err)
			RespondInternal(ctx, "Could not create user")
		}
		return
	}

	h.metrics.ObserveAuth("register", "ok")

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"user":    a,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req account.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	a, err := h.accounts.Authenticate(cctx, req.Email, req.Password)

	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			h.metrics.ObserveAuth("login", "rejected")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		h.metrics.ObserveAuth("login", "error")
		h.log.ErrorContext(ctx.Request.Context(), "login failed", "err", err)
		RespondInternal(ctx, "Could not log in")
		return
	}

	token, err := h.jwt.GenerateAccessToken(a.ID, a.Email, a.Role)

	if err != nil {
		h.metrics.ObserveAuth("login", "error")
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.metrics.ObserveAuth("login", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"user":    a,
		"token":   token,
	})
}

func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req account.ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	err := h.accounts.ResetPassword(cctx, req)

	if err != nil {
		switch {
		case respondValidation(ctx, err):
			h.metrics.ObserveAuth("reset", "rejected")
		case errors.Is(err, account.ErrInvalidAnswer):
			h.metrics.ObserveAuth("reset", "rejected")
			RespondUnAuthorized(ctx, "invalid_answer", "Email or answer is incorrect.")
		default:
			h.metrics.ObserveAuth("reset", "error")
			h.log.ErrorContext(ctx.Request.Context(), "password reset failed", "err", err)
			RespondInternal(ctx, "Could not reset password")
		}
		return
	}

	h.metrics.ObserveAuth("reset", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset successfully",
	})
}

func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	email, ok := middlewares.EmailFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req account.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx, 3*time.Second)
	defer cancel()

	a, err := h.accounts.UpdateProfile(cctx, email, req)

	if err != nil {
		switch {
		case respondValidation(ctx, err):
		case errors.Is(err, account.ErrNotFound):
			// token outlived its account
			RespondUnAuthorized(ctx, "unauthorized", "Account no longer exists")
		default:
			h.log.ErrorContext(ctx.Request.Context(), "profile update failed", "err", err)
			RespondInternal(ctx, "Could not update profile")
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Profile updated successfully",
		"user":    a,
	})
}

// UserAuth and AdminAuth answer ok once the route's middleware has let the
// request through.
func (h *AuthHandler) UserAuth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) AdminAuth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
