package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

// Fake implementation of handlers.AccountService and handlers.AccountAdmin

type fakeAccounts struct {
	createFn  func(ctx context.Context, req account.CreateAccountRequest) (account.Account, error)
	authFn    func(ctx context.Context, email, password string) (account.Account, error)
	resetFn   func(ctx context.Context, req account.ResetPasswordRequest) error
	profileFn func(ctx context.Context, email string, req account.UpdateProfileRequest) (account.Account, error)
	listFn    func(ctx context.Context) ([]account.Account, error)
	deleteFn  func(ctx context.Context, email string) error
}

func (f *fakeAccounts) Create(ctx context.Context, req account.CreateAccountRequest) (account.Account, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return account.Account{}, nil
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (account.Account, error) {
	if f.authFn != nil {
		return f.authFn(ctx, email, password)
	}
	return account.Account{}, account.ErrInvalidCredentials
}

func (f *fakeAccounts) ResetPassword(ctx context.Context, req account.ResetPasswordRequest) error {
	if f.resetFn != nil {
		return f.resetFn(ctx, req)
	}
	return nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, email string, req account.UpdateProfileRequest) (account.Account, error) {
	if f.profileFn != nil {
		return f.profileFn(ctx, email, req)
	}
	return account.Account{}, nil
}

func (f *fakeAccounts) List(ctx context.Context) ([]account.Account, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []account.Account{}, nil
}

func (f *fakeAccounts) DeleteByEmail(ctx context.Context, email string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, email)
	}
	return nil
}

type fakeIssuer struct{}

func (fakeIssuer) GenerateAccessToken(userID, email string, role int) (string, error) {
	return "token-for-" + userID, nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h...)

	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	Error   struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var out envelope
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}
