package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceHandlerAddsSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(&traceHandler{Handler: slog.NewJSONHandler(&buf, nil)})

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.With("component", "test").InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, sc.TraceID().String(), rec["trace_id"])
	require.Equal(t, sc.SpanID().String(), rec["span_id"])
	require.Equal(t, "test", rec["component"])

	buf.Reset()
	log.InfoContext(context.Background(), "no span")
	require.NotContains(t, buf.String(), "trace_id")
}

func TestNewHandler(t *testing.T) {
	require.NotPanics(t, func() {
		slog.New(NewHandler(nil)).Debug("dev")
		slog.New(NewHandler(&Options{Env: "prod", Level: "warn"})).Info("filtered")
	})

	require.Panics(t, func() { NewHandler(&Options{Level: "loud"}) })
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middleware.RequestID(NewLoggerMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "WARN", line["level"])
	require.Equal(t, "/api/v1/orders", line["path"])
	require.InDelta(t, http.StatusConflict, line["status"], 0)
	require.NotEmpty(t, line["request_id"])
}
