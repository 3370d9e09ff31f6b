package auditlog

import (
	"context"
	"log/slog"
)

// Logger writes audit records to slog and, when configured, to a Repository.
// Repository failures are logged and dropped so they never replace the
// outcome being recorded.
type Logger struct {
	logger *slog.Logger
	repo   Repository
}

// NewLogger returns an audit logger. A nil logger means slog.Default(); repo
// may be nil.
func NewLogger(logger *slog.Logger, repo Repository) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, repo: repo}
}

func (l *Logger) Info(ctx context.Context, rec Record) {
	l.write(ctx, slog.LevelInfo, rec)
}

func (l *Logger) Error(ctx context.Context, rec Record) {
	l.write(ctx, slog.LevelError, rec)
}

func (l *Logger) write(ctx context.Context, level slog.Level, rec Record) {
	Stamp(ctx, &rec)

	attrs := []any{"stage", rec.Stage}
	if rec.OrderID != "" {
		attrs = append(attrs, "order_id", rec.OrderID)
	}
	if rec.Total != nil {
		attrs = append(attrs, "total", rec.Total.String())
	}
	if rec.Error != "" {
		attrs = append(attrs, "error", rec.Error)
	}
	l.logger.Log(ctx, level, string(rec.Event), attrs...)

	if l.repo == nil {
		return
	}
	if err := l.repo.Save(ctx, &rec); err != nil {
		l.logger.WarnContext(ctx, "audit record not persisted", "event", rec.Event, "order_id", rec.OrderID, "error", err)
	}
}
