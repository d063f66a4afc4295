package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/ccqa"
)

// Ensure LoggingPageWriter implements ccqa.PageWriter.
var _ ccqa.PageWriter = (*LoggingPageWriter)(nil)

// LoggingPageWriter wraps a PageWriter with logging. The name identifies
// the sink in log output.
type LoggingPageWriter struct {
	next   ccqa.PageWriter
	name   string
	logger *slog.Logger
}

// NewLoggingPageWriter creates a new LoggingPageWriter.
func NewLoggingPageWriter(next ccqa.PageWriter, name string, logger *slog.Logger) *LoggingPageWriter {
	return &LoggingPageWriter{next: next, name: name, logger: logger}
}

// WritePages delegates to the wrapped writer and logs the outcome.
func (w *LoggingPageWriter) WritePages(ctx context.Context, pages []*ccqa.Page) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		w.logger.Log(ctx, level, "write pages",
			"sink", w.name,
			"count", len(pages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return w.next.WritePages(ctx, pages)
}
