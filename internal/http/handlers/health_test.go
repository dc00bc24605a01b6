package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/storefront/internal/http/handlers"
)

func TestReadyz(t *testing.T) {
	ok := handlers.NewHealthHandler(func(context.Context) error { return nil })
	down := handlers.NewHealthHandler(func(context.Context) error { return errors.New("no store") })

	if w := doJSON(setupRouter(http.MethodGet, "/readyz", ok.Readyz), http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("ready status = %d", w.Code)
	}
	if w := doJSON(setupRouter(http.MethodGet, "/readyz", down.Readyz), http.MethodGet, "/readyz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("not ready status = %d", w.Code)
	}
}
