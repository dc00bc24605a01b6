package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/db"
	apphttp "github.com/geocoder89/storefront/internal/http"
	"github.com/geocoder89/storefront/internal/repo/memory"
	"github.com/geocoder89/storefront/internal/repo/postgres"
	"github.com/geocoder89/storefront/internal/security"
	"github.com/geocoder89/storefront/internal/store"
	"github.com/gin-gonic/gin"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		AdminEmail:          "admin@example.com",
		AdminPassword:       "admin-pass",
		AdminName:           "Test Admin",
		AdminAnswer:         "green",
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
		AllowedOrigins:      []string{"http://localhost:3000"},
		LoginRateLimit:      100,
		LoginRateWindow:     time.Minute,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRouter(t *testing.T, accounts store.AccountRepository, categories store.CategoryRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	log := discardLogger()

	accountStore := store.NewAccountStore(accounts, security.NewHasher(), log)
	if err := store.EnsureAdmin(context.Background(), accountStore, cfg); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	return apphttp.NewRouter(log, cfg, apphttp.Deps{
		Accounts:   accountStore,
		Categories: store.NewCategoryStore(categories, log),
		JWT:        auth.NewManager(cfg.JWTSecret, cfg.AccessTTL()),
	})
}

// helpers

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		Email string `json:"email"`
		Role  int    `json:"role"`
	} `json:"user"`
}

func login(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"`+password+`"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login %s got status %d, body=%s", email, w.Code, w.Body.String())
	}

	var resp loginResponse
	mustReadJSON(t, w, &resp)

	if resp.Token == "" {
		t.Fatalf("login %s returned no token", email)
	}
	return resp.Token
}

func runStorefrontFlow(t *testing.T, router http.Handler) {
	// register
	w := doRequest(router, http.MethodPost, "/api/v1/auth/register",
		`{"name":"Sam Doe","email":"Sam@Example.com","password":"password123","answer":"blue"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register got status %d, body=%s", w.Code, w.Body.String())
	}

	// same email, different case
	w = doRequest(router, http.MethodPost, "/api/v1/auth/register",
		`{"name":"Sam Two","email":"sam@example.com","password":"password456","answer":"red"}`, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register got status %d, body=%s", w.Code, w.Body.String())
	}

	userToken := login(t, router, "sam@example.com", "password123")

	// wrong password and unknown email look the same
	w1 := doRequest(router, http.MethodPost, "/api/v1/auth/login", `{"email":"sam@example.com","password":"nope"}`, "")
	w2 := doRequest(router, http.MethodPost, "/api/v1/auth/login", `{"email":"ghost@example.com","password":"nope"}`, "")
	if w1.Code != http.StatusUnauthorized || w2.Code != http.StatusUnauthorized || w1.Body.Len() == 0 {
		t.Fatalf("bad logins got %d and %d", w1.Code, w2.Code)
	}

	// a plain user is not an admin
	if w := doRequest(router, http.MethodGet, "/api/v1/auth/user-auth", "", userToken); w.Code != http.StatusOK {
		t.Fatalf("user-auth got %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/v1/auth/admin-auth", "", userToken); w.Code != http.StatusForbidden {
		t.Fatalf("admin-auth as user got %d", w.Code)
	}
	if w := doRequest(router, http.MethodDelete, "/delete-user/sam@example.com", "", userToken); w.Code != http.StatusForbidden {
		t.Fatalf("delete-user as user got %d", w.Code)
	}

	// password recovery
	w = doRequest(router, http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"sam@example.com","answer":"wrong","newPassword":"newpass123"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("forgot-password wrong answer got %d", w.Code)
	}
	w = doRequest(router, http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"sam@example.com","answer":"blue","newPassword":"newpass123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("forgot-password got %d, body=%s", w.Code, w.Body.String())
	}
	login(t, router, "sam@example.com", "newpass123")

	adminToken := login(t, router, "admin@example.com", "admin-pass")

	// categories
	w = doRequest(router, http.MethodPost, "/api/v1/category/create-category", `{"name":"Electronics"}`, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create-category got %d, body=%s", w.Code, w.Body.String())
	}
	w = doRequest(router, http.MethodPost, "/api/v1/category/create-category", `{"name":"electronics"}`, adminToken)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate category got %d, body=%s", w.Code, w.Body.String())
	}
	w = doRequest(router, http.MethodPost, "/api/v1/category/create-category", `{"name":"Books"}`, userToken)
	if w.Code != http.StatusForbidden {
		t.Fatalf("create-category as user got %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/v1/category/single-category/electronics", "", ""); w.Code != http.StatusOK {
		t.Fatalf("single-category got %d", w.Code)
	}

	// admin deletes the user
	w = doRequest(router, http.MethodDelete, "/delete-user/sam@example.com", "", adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("delete-user got %d, body=%s", w.Code, w.Body.String())
	}

	var deleted struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	mustReadJSON(t, w, &deleted)
	if !deleted.Success || deleted.Message == "" {
		t.Fatalf("unexpected delete body %s", w.Body.String())
	}

	w = doRequest(router, http.MethodDelete, "/delete-user/sam@example.com", "", adminToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete-user got %d, body=%s", w.Code, w.Body.String())
	}

	// deleted accounts cannot log in
	w = doRequest(router, http.MethodPost, "/api/v1/auth/login", `{"email":"sam@example.com","password":"newpass123"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login after delete got %d", w.Code)
	}
}

func TestStorefrontIntegration_Memory(t *testing.T) {
	router := newRouter(t, memory.NewAccountsRepo(), memory.NewCategoriesRepo())
	runStorefrontFlow(t, router)
}

func TestStorefrontIntegration_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	if _, err := db.RunMigrations(dsn); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, db.PoolConfig{URL: dsn, MaxConns: 4})
	if err != nil {
		t.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	reset := func() {
		if _, err := pool.Exec(ctx, `TRUNCATE accounts, categories`); err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}
	}
	reset()
	defer reset()

	router := newRouter(t, postgres.NewAccountsRepo(pool, nil), postgres.NewCategoriesRepo(pool, nil))
	runStorefrontFlow(t, router)
}
