package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/ccqa"
)

// Ensure LoggingArchiveReader implements ccqa.ArchiveReader.
var _ ccqa.ArchiveReader = (*LoggingArchiveReader)(nil)

// LoggingArchiveReader wraps an ArchiveReader with logging.
type LoggingArchiveReader struct {
	next   ccqa.ArchiveReader
	logger *slog.Logger
}

// NewLoggingArchiveReader creates a new LoggingArchiveReader.
func NewLoggingArchiveReader(next ccqa.ArchiveReader, logger *slog.Logger) *LoggingArchiveReader {
	return &LoggingArchiveReader{next: next, logger: logger}
}

// ReadArchive delegates to the wrapped reader and logs the outcome.
func (r *LoggingArchiveReader) ReadArchive(ctx context.Context, path string) (archive *ccqa.Archive, err error) {
	defer func(begin time.Time) {
		var records, skipped int
		if archive != nil {
			records, skipped = len(archive.Records), archive.Skipped
		}
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelError
		}
		r.logger.Log(ctx, level, "read archive",
			"path", path,
			"records", records,
			"skipped", skipped,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.ReadArchive(ctx, path)
}
