package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
)

type contextKey struct{}

var (
	loggerKey       = contextKey{}
	defaultLogger   *slog.Logger
	defaultLoggerMu sync.RWMutex
)

// Output formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	hfTokenPattern = regexp.MustCompile(`hf_[A-Za-z0-9]{8,}`)
)

func init() {
	defaultLogger = New("info", os.Stdout)
}

// parseLevel converts a string level to slog.Level
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		if defaultLogger != nil {
			defaultLogger.Warn("invalid log level", "level", level)
		}
		return slog.LevelInfo
	}
}

// redactor hides owner emails and provider tokens in every log attribute
func redactor() func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(
		masq.WithRegex(emailPattern),
		masq.WithRegex(hfTokenPattern),
		masq.WithContain("Bearer "),
	)
}

// New creates a console logger with the specified level string
// Accepts: "debug", "info", "warn", "warning", "error" (case-insensitive)
func New(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	handler := clog.New(
		clog.WithWriter(w),
		clog.WithLevel(parseLevel(level)),
		clog.WithTimeFmt("15:04:05"),
		clog.WithSource(false),
		clog.WithAttrHook(clog.GoerrHook),
	)

	return slog.New(&redactHandler{inner: handler, replace: redactor()})
}

// NewWithFormat creates a logger writing either colored console lines or
// JSON objects
func NewWithFormat(level, format string, w io.Writer) (*slog.Logger, error) {
	switch strings.ToLower(format) {
	case "", FormatConsole:
		return New(level, w), nil
	case FormatJSON:
		if w == nil {
			w = os.Stdout
		}
		handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       parseLevel(level),
			ReplaceAttr: redactor(),
		})
		return slog.New(handler), nil
	default:
		return nil, goerr.New("unsupported log format", goerr.V("format", format))
	}
}

// Default returns the default logger
func Default() *slog.Logger {
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger
func SetDefault(logger *slog.Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}

// With returns a new context with the logger attached
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// From retrieves the logger from the context
// If no logger is found, it returns the default logger
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return Default()
}
