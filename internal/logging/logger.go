// Package logging provides structured logging configuration using log/slog.
//
// This package integrates with chi's RequestID middleware to propagate
// request IDs through structured log entries, and can mirror every record to
// a Seq server for centralized search.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	slogseq "github.com/sokkalf/slog-seq"
)

// Options configures Setup.
type Options struct {
	// Level: "debug", "info", "warn", "error" (default: "info")
	Level string

	// Format: "text" or "json" (default: "text")
	Format string

	// SeqURL, when set, sends a copy of every record to that Seq server.
	SeqURL string

	// Output receives console records. Defaults to os.Stdout.
	Output io.Writer
}

// Setup configures the global slog logger and returns a function that
// flushes and closes any remote sink. The returned function is never nil.
//
// Use "json" format in production for machine parsing and "text" in
// development for human readability.
func Setup(opts Options) func() {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	var console slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		console = slog.NewJSONHandler(out, handlerOpts)
	} else {
		console = slog.NewTextHandler(out, handlerOpts)
	}

	if opts.SeqURL == "" {
		slog.SetDefault(slog.New(console))
		return func() {}
	}

	_, seq := slogseq.NewLogger(
		opts.SeqURL,
		slogseq.WithBatchSize(50),
		slogseq.WithFlushInterval(2*time.Second),
		slogseq.WithHandlerOptions(handlerOpts),
	)
	if seq == nil {
		slog.SetDefault(slog.New(console))
		slog.Warn("seq sink unavailable, logging to console only", "url", opts.SeqURL)
		return func() {}
	}

	slog.SetDefault(slog.New(newFanout(console, seq)))
	return func() { seq.Close() }
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromContext returns a logger enriched with request context.
//
// When called with a request context that contains a chi RequestID,
// the returned logger includes request_id in all log entries.
func FromContext(ctx context.Context) *slog.Logger {
	logger := slog.Default()

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a request-scoped logger with additional structured
// fields, for operation loggers that carry the same context through several
// steps:
//
//	log := logging.WithFields(ctx, "build_id", id)
//	log.Info("build started")
//	// ...
//	log.Info("build completed", "rows", stats.Output)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}
