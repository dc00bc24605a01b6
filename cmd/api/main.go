package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/db"
	httpx "github.com/geocoder89/storefront/internal/http"
	"github.com/geocoder89/storefront/internal/http/middlewares"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/redisclient"
	"github.com/geocoder89/storefront/internal/repo/memory"
	"github.com/geocoder89/storefront/internal/repo/mongo"
	"github.com/geocoder89/storefront/internal/repo/postgres"
	"github.com/geocoder89/storefront/internal/security"
	"github.com/geocoder89/storefront/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// backend is the selected store driver's repositories plus its lifecycle hooks.
type backend struct {
	accounts   store.AccountRepository
	categories store.CategoryRepository
	ping       func(ctx context.Context) error
	close      func()
}

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "storefront", cfg.Env, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		tctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(tctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	be, err := openBackend(ctx, cfg, prom, log)
	if err != nil {
		return err
	}
	defer be.close()

	accounts := store.NewAccountStore(be.accounts, security.NewHasher(), log)
	categories := store.NewCategoryStore(be.categories, log)

	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = store.EnsureAdmin(seedCtx, accounts, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	deps := httpx.Deps{
		Accounts:   accounts,
		Categories: categories,
		JWT:        auth.NewManager(cfg.JWTSecret, cfg.AccessTTL()),
		Ping:       be.ping,
		Prom:       prom,
		Gatherer:   reg,
	}

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()

		if err := rdb.Ping(ctx); err != nil {
			// the limiter fails open while redis is down
			log.Warn("redis unreachable at start", "addr", cfg.RedisAddr, "err", err)
		}
		deps.LoginCounter = middlewares.NewRedisCounter(rdb, cfg.LoginRateWindow)
	}

	router := httpx.NewRouter(log, cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("server shutting down")

	shutdownCtx, cancelShutdown := config.WithTimeout(10 * time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func openBackend(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		version, err := db.RunMigrations(cfg.DBURL)
		if err != nil {
			return backend{}, err
		}
		log.Info("migrations applied", "version", version)

		pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DBURL, MaxConns: cfg.DBMaxConns})
		if err != nil {
			return backend{}, fmt.Errorf("db connect failed: %w", err)
		}

		return backend{
			accounts:   postgres.NewAccountsRepo(pool, prom),
			categories: postgres.NewCategoriesRepo(pool, prom),
			ping:       pool.Ping,
			close:      pool.Close,
		}, nil

	case config.DriverMongo:
		d, err := mongo.Connect(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			return backend{}, fmt.Errorf("mongo connect failed: %w", err)
		}

		if err := d.EnsureIndexes(ctx); err != nil {
			_ = d.Disconnect(context.Background())
			return backend{}, fmt.Errorf("mongo indexes: %w", err)
		}

		return backend{
			accounts:   mongo.NewAccountsRepo(d, prom),
			categories: mongo.NewCategoriesRepo(d, prom),
			ping:       d.Ping,
			close: func() {
				cctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = d.Disconnect(cctx)
			},
		}, nil

	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")

		accounts := memory.NewAccountsRepo()

		return backend{
			accounts:   accounts,
			categories: memory.NewCategoriesRepo(),
			ping:       accounts.Ping,
			close:      func() {},
		}, nil
	}

	return backend{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
