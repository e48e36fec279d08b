package polyindex

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with container-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithIndex adds an index name field to the logger.
func (l *Logger) WithIndex(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("index", name),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ref Ref, err error) {
	if err != nil {
		l.Debug("insert rejected",
			"error", err,
		)
	} else {
		l.Debug("insert completed",
			"ref", ref,
		)
	}
}

// LogErase logs an erase operation.
func (l *Logger) LogErase(ref Ref, err error) {
	if err != nil {
		l.Debug("erase failed",
			"ref", ref,
			"error", err,
		)
	} else {
		l.Debug("erase completed",
			"ref", ref,
		)
	}
}

// LogModify logs a modify operation. A modify that erased its record is
// logged at warn level because the caller lost the record.
func (l *Logger) LogModify(ref Ref, outcome ModifyOutcome, err error) {
	switch outcome {
	case OutcomeErased:
		l.Warn("modify erased record",
			"ref", ref,
			"error", err,
		)
	case OutcomeRolledBack:
		l.Info("modify rolled back",
			"ref", ref,
			"error", err,
		)
	case OutcomeNotFound:
		l.Debug("modify target not found",
			"ref", ref,
		)
	default:
		l.Debug("modify completed",
			"ref", ref,
		)
	}
}

// LogReplace logs a replace operation.
func (l *Logger) LogReplace(ref Ref, err error) {
	if err != nil {
		l.Debug("replace rejected",
			"ref", ref,
			"error", err,
		)
	} else {
		l.Debug("replace completed",
			"ref", ref,
		)
	}
}

// LogClear logs a clear operation.
func (l *Logger) LogClear(count int) {
	l.Info("container cleared",
		"count", count,
	)
}
