package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/ccqa"
)

// Ensure LoggingExtractor implements ccqa.Extractor.
var _ ccqa.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with per-record debug logging.
type LoggingExtractor struct {
	next   ccqa.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next ccqa.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor. Records without a Question
// are not logged since they make up most of an archive.
func (e *LoggingExtractor) Extract(rec *ccqa.RawRecord) (page *ccqa.Page, err error) {
	defer func(begin time.Time) {
		if ccqa.ErrorCode(err) == ccqa.ENOMATCH {
			return
		}
		var size int
		if page != nil {
			size = len(page.MHTML)
		}
		e.logger.Debug("extract",
			"uri", rec.Header.Get(ccqa.HeaderTargetURI),
			"bytes", size,
			"duration", time.Since(begin),
			"code", ccqa.ErrorCode(err),
		)
	}(time.Now())
	return e.next.Extract(rec)
}

