package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestTraceHandler_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	log.Info("signup", "email", "a@b.co", "password", "hunter2", slog.Group("req", "answer", "blue"))
	log.With("token", "abc.def.ghi").Warn("with attrs")

	out := buf.String()

	for _, leaked := range []string{"hunter2", "blue", "abc.def.ghi"} {
		if strings.Contains(out, leaked) {
			t.Fatalf("secret %q leaked into log output:\n%s", leaked, out)
		}
	}

	if !strings.Contains(out, `"email":"a@b.co"`) {
		t.Fatalf("non-secret attributes should pass through:\n%s", out)
	}
	if strings.Count(out, redacted) != 3 {
		t.Fatalf("expected three redactions:\n%s", out)
	}
}

func TestTraceHandler_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "inside span")
	span.End()

	out := buf.String()
	if !strings.Contains(out, span.SpanContext().TraceID().String()) {
		t.Fatalf("expected trace id in output:\n%s", out)
	}
	if !strings.Contains(out, `"span_id"`) {
		t.Fatalf("expected span id in output:\n%s", out)
	}
}

func TestNewLogger_ProdSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	log.Debug("hidden")

	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered in prod, got %s", buf.String())
	}
}
