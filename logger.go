package sparsim

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/sparsim/internal/placement"
)

// Logger wraps slog.Logger with simulator-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithAlgorithm adds an algorithm field to the logger.
func (l *Logger) WithAlgorithm(a Algorithm) *Logger {
	return &Logger{
		Logger: l.Logger.With("algorithm", a.String()),
	}
}

// WithServers adds the server count and replica factor to the logger.
func (l *Logger) WithServers(servers, replicas int) *Logger {
	return &Logger{
		Logger: l.Logger.With("servers", servers, "replicas", replicas),
	}
}

// LogPhase logs the end of a run phase.
func (l *Logger) LogPhase(ctx context.Context, phase string, cost int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "phase failed",
			"phase", phase,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "phase completed",
			"phase", phase,
			"cost", cost,
			"elapsed", elapsed,
		)
	}
}

// LogIngestProgress logs the cost after a number of ingested vertices.
func (l *Logger) LogIngestProgress(ctx context.Context, ingested, total, cost int) {
	l.InfoContext(ctx, "ingest progress",
		"ingested", ingested,
		"total", total,
		"cost", cost,
	)
}

// LogDecision logs the placement decision for one vertex.
func (l *Logger) LogDecision(ctx context.Context, v uint32, d placement.Decision, err error) {
	if err != nil {
		l.ErrorContext(ctx, "placement failed",
			"vertex", v,
			"error", err,
		)
	} else if d != placement.Retained {
		l.DebugContext(ctx, "placement decision",
			"vertex", v,
			"decision", d.String(),
		)
	}
}

// LogValidation logs the result of a full invariant scan.
func (l *Logger) LogValidation(ctx context.Context, phase string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "validation failed",
			"phase", phase,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "validation passed",
			"phase", phase,
		)
	}
}
