// Package logger sets up structured slog logging with request-scoped field
// injection, optional OTel export, optional file rotation, and sensitive-
// argument redaction for function-call tracing. Grounded on this codebase's
// existing logger.go/context.go (TraceHandler wrapping a base handler to
// inject context-scoped fields).
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Five levels: debug, info, warning, error, critical. slog only
// ships Debug/Info/Warn/Error, so critical is an extra level above Error.
const (
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarning  = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
)

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	case "critical":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// Config is the subset of configuration logger.Setup needs, kept local so
// common/ never imports internal/.
type Config struct {
	Level         string
	Production    bool
	EnableOTel    bool
	OTelService   string
	File          string
	MaxSizeMB     int
	MaxBackups    int
}

// level is shared mutable state backing the admin logging-config hot-reload
// endpoint: a *slog.LevelVar can be adjusted after the handler is built,
// unlike a plain slog.Level passed into HandlerOptions.
var level = new(slog.LevelVar)

func Setup(cfg Config) {
	level.Set(parseLevel(cfg.Level))
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	writer := logWriter(cfg)

	switch {
	case cfg.Production && cfg.EnableOTel:
		base = otelslog.NewHandler(cfg.OTelService, otelslog.WithLoggerProvider(global.GetLoggerProvider()))
	case cfg.Production:
		base = slog.NewJSONHandler(writer, opts)
	default:
		base = slog.NewTextHandler(writer, opts)
	}

	slog.SetDefault(slog.New(NewTraceHandler(base)))
}

// SetLevel adjusts the active log level without rebuilding the handler,
// backing the admin logging-config endpoint's runtime reconfiguration.
func SetLevel(s string) {
	level.Set(parseLevel(s))
}

// CurrentLevel returns the active level's canonical lowercase name.
func CurrentLevel() string {
	switch level.Level() {
	case LevelDebug:
		return "debug"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return "info"
	}
}

// logWriter returns a lumberjack-backed rotating writer when a file sink is
// configured, else stdout.
func logWriter(cfg Config) io.Writer {
	if cfg.File == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
}

type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("otel_trace_id", sc.TraceID().String()),
			slog.String("otel_span_id", sc.SpanID().String()),
		)
	}

	fields := GetLogFields(ctx)
	if fields.TraceID != "" {
		r.AddAttrs(slog.String("trace_id", fields.TraceID))
	}
	if fields.IncidentID != "" {
		r.AddAttrs(slog.String("incident_id", fields.IncidentID))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}

// sensitivePattern matches argument names that must be redacted before a
// function-entry/exit trace log is emitted.
var sensitivePattern = regexp.MustCompile(`(?i)(api_key|token|password|secret)`)

const redactedPlaceholder = "[REDACTED]"

// TraceCall logs a function-entry trace line (only meaningful when the
// caller has enabled tracing in config) with any sensitive-looking argument
// values redacted. Decoupled from the handler chain because this is an
// explicit, opt-in instrumentation call, not something every log record
// needs.
func TraceCall(ctx context.Context, funcName string, args map[string]any) {
	attrs := make([]any, 0, len(args)*2+2)
	attrs = append(attrs, "func", funcName)
	for k, v := range args {
		if sensitivePattern.MatchString(k) {
			v = redactedPlaceholder
		}
		attrs = append(attrs, k, v)
	}
	slog.DebugContext(ctx, "function call", attrs...)
}
