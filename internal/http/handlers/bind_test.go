package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/domain/validation"
	"github.com/geocoder89/storefront/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			JSON   string                  `json:"json"`
			Field  string                  `json:"field"`
			Fields []validation.FieldError `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func bindRouter() *gin.Engine {
	r := gin.New()
	r.POST("/register", func(ctx *gin.Context) {
		var req account.CreateAccountRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})
	return r
}

func postBind(t *testing.T, body string) bindErrorResponse {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	bindRouter().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Error.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Error.Code)
	}

	return resp
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	resp := postBind(t, `{"email":"not-an-email","password":"123"}`)

	wantRules := map[string]string{
		"name":     "required",
		"email":    "email",
		"password": "min",
		"answer":   "required",
	}

	found := map[string]validation.FieldError{}
	for _, fieldErr := range resp.Error.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Error.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	resp := postBind(t, `{"name":"Ada","email":"ada@example.com","password":"secret1","answer":"blue","phone":42}`)

	if resp.Error.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Error.Details.JSON)
	}
	if resp.Error.Details.Field != "phone" {
		t.Fatalf("expected detail field to be phone, got %q", resp.Error.Details.Field)
	}
	if len(resp.Error.Details.Fields) == 0 || resp.Error.Details.Fields[0].Rule != "type" {
		t.Fatalf("expected a type rule in details.fields: %+v", resp.Error.Details.Fields)
	}
}

func TestBindJSON_SyntaxAndEmptyBody(t *testing.T) {
	if resp := postBind(t, `{"name":`); resp.Error.Details.JSON != "invalid_json_syntax" {
		t.Fatalf("unexpected details for truncated json: %+v", resp.Error.Details)
	}

	if resp := postBind(t, ``); resp.Error.Details.JSON != "empty_body" {
		t.Fatalf("expected empty_body, got %+v", resp.Error.Details)
	}
}
