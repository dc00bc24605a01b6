package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/http/handlers"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Accounts   *store.AccountStore
	Categories *store.CategoryStore
	JWT        *auth.Manager

	// Ping backs /readyz; nil means always ready.
	Ping func(ctx context.Context) error

	// LoginCounter backs the login rate limit; nil uses an in-process counter.
	LoginCounter middlewares.Counter

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

const maxBodyBytes = 1 << 20

func NewRouter(log *slog.Logger, cfg config.Config, d Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("storefront"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	// health
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(d.JWT)

	counter := d.LoginCounter
	if counter == nil {
		counter = middlewares.NewMemoryCounter(cfg.LoginRateWindow)
	}
	loginLimiter := middlewares.NewRateLimiter(counter, cfg.LoginRateLimit, log)

	authHandler := handlers.NewAuthHandler(d.Accounts, d.JWT, d.Prom, log)
	usersHandler := handlers.NewUsersHandler(d.Accounts, log)
	categoriesHandler := handlers.NewCategoriesHandler(d.Categories, 30*time.Second, log)

	// admin deletion of an account by email
	r.DELETE("/delete-user/:email", authMW.RequireAuth(), authMW.RequireAdmin(), usersHandler.DeleteUser)

	v1 := r.Group("/api/v1")
	v1.Use(middlewares.RequireJSON())

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", loginLimiter.RateLimiterMiddleware("login", middlewares.KeyByIP), authHandler.Login)
		authGroup.POST("/forgot-password", loginLimiter.RateLimiterMiddleware("forgot", middlewares.KeyByIP), authHandler.ForgotPassword)

		authGroup.GET("/user-auth", authMW.RequireAuth(), authHandler.UserAuth)
		authGroup.GET("/admin-auth", authMW.RequireAuth(), authMW.RequireAdmin(), authHandler.AdminAuth)
		authGroup.PUT("/profile", authMW.RequireAuth(), loginLimiter.RateLimiterMiddleware("profile", middlewares.KeyByUserOrIP), authHandler.UpdateProfile)
		authGroup.GET("/users", authMW.RequireAuth(), authMW.RequireAdmin(), usersHandler.ListUsers)
	}

	categoryGroup := v1.Group("/category")
	{
		categoryGroup.GET("/get-category", categoriesHandler.ListCategories)
		categoryGroup.GET("/single-category/:slug", categoriesHandler.GetCategoryBySlug)

		admin := categoryGroup.Group("", authMW.RequireAuth(), authMW.RequireAdmin())
		admin.POST("/create-category", categoriesHandler.CreateCategory)
		admin.PUT("/update-category/:id", categoriesHandler.UpdateCategory)
		admin.DELETE("/delete-category/:id", categoriesHandler.DeleteCategory)
	}

	return r
}
