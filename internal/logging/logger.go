// Package logging provides centralized logging for the mailprobe service.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// contextKey is used for storing loggers in context.
type contextKey struct{}

var loggerKey = contextKey{}

// probeCounter is used to generate unique probe session IDs.
var probeCounter atomic.Uint64

// NewLogger creates a new slog.Logger with the specified level.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: lvl,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	return slog.New(handler)
}

// WithProbe returns a new logger with probe-session attributes.
// It generates a unique session ID for log correlation.
func WithProbe(logger *slog.Logger, host string) *slog.Logger {
	probeID := probeCounter.Add(1)
	return logger.With(
		slog.Uint64("probe_id", probeID),
		slog.String("mx_host", host),
	)
}

// WithRequest returns a new logger with HTTP request attributes.
func WithRequest(logger *slog.Logger, requestID string, remoteAddr string) *slog.Logger {
	return logger.With(
		slog.String("request_id", requestID),
		slog.String("remote_addr", remoteAddr),
	)
}

// WithVerification returns a new logger with verification-specific attributes.
func WithVerification(logger *slog.Logger, email string) *slog.Logger {
	return logger.With(
		slog.String("email", email),
	)
}

// WithListener returns a new logger with listener-specific attributes.
func WithListener(logger *slog.Logger, address string, mode string) *slog.Logger {
	return logger.With(
		slog.String("listener", address),
		slog.String("mode", mode),
	)
}

// FromContext retrieves the logger from the context.
// Returns the default logger if none is found.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// NewContext returns a new context with the logger attached.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// DialogWriter wraps an io.Writer to log all data written.
// Used for debugging raw SMTP probe dialogs.
type DialogWriter struct {
	w      io.Writer
	logger *slog.Logger
	prefix string
}

// NewDialogWriter creates a writer that logs all data.
func NewDialogWriter(w io.Writer, logger *slog.Logger, prefix string) *DialogWriter {
	return &DialogWriter{
		w:      w,
		logger: logger,
		prefix: prefix,
	}
}

// Write writes data and logs it.
func (dw *DialogWriter) Write(p []byte) (n int, err error) {
	n, err = dw.w.Write(p)
	if n > 0 {
		dw.logger.Debug("dialog",
			slog.String("direction", dw.prefix),
			slog.String("data", string(p[:n])),
		)
	}
	return n, err
}

// DialogReader wraps an io.Reader to log all data read.
type DialogReader struct {
	r      io.Reader
	logger *slog.Logger
	prefix string
}

// NewDialogReader creates a reader that logs all data.
func NewDialogReader(r io.Reader, logger *slog.Logger, prefix string) *DialogReader {
	return &DialogReader{
		r:      r,
		logger: logger,
		prefix: prefix,
	}
}

// Read reads data and logs it.
func (dr *DialogReader) Read(p []byte) (n int, err error) {
	n, err = dr.r.Read(p)
	if n > 0 {
		dr.logger.Debug("dialog",
			slog.String("direction", dr.prefix),
			slog.String("data", string(p[:n])),
		)
	}
	return n, err
}
