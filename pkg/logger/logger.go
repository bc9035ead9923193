package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Options configures the log handler.
type Options struct {
	// Level is a zap level name. Empty means info.
	Level string
	// Env "prod" selects JSON output, anything else the console encoder.
	Env string
}

// NewHandler builds a slog handler backed by zap that adds trace_id and span_id
// of the span in the record context. nil opts gives development defaults.
func NewHandler(opts *Options) slog.Handler {
	if opts == nil {
		opts = &Options{}
	}

	return &traceHandler{Handler: zapslog.NewHandler(mustNewCore(opts), zapslog.WithCaller(true))}
}

func mustNewCore(opts *Options) zapcore.Core {
	var cfg zap.Config
	if opts.Env == "prod" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			panic("invalid log level: " + err.Error())
		}
		level = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	log, err := cfg.Build()
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}

	return log.Core()
}

type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}
