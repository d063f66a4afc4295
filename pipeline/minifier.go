// Package pipeline runs the Question extractor over every record of a web
// archive and hands the surviving pages to a writer.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/fwojciec/ccqa"
	"github.com/fwojciec/ccqa/bloom"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Phase names a stage of a run.
type Phase string

const (
	PhaseReading    Phase = "reading"
	PhaseProcessing Phase = "processing"
	PhaseFinalizing Phase = "finalizing"
)

// DefaultProgressInterval is how often processing progress is logged.
const DefaultProgressInterval = 5 * time.Second

// dedupeFalsePositiveRate sizes the Bloom stage of the dedupe filter.
const dedupeFalsePositiveRate = 0.0001

// Minifier wires an archive reader, an extractor and a writer into a run.
type Minifier struct {
	Archives  ccqa.ArchiveReader
	Extractor ccqa.Extractor
	Writer    ccqa.PageWriter

	// Workers bounds concurrent extractions. Defaults to runtime.NumCPU().
	Workers int

	// Dedupe keeps only the first page seen for each URI.
	Dedupe bool

	// ProgressInterval throttles progress logging during processing.
	ProgressInterval time.Duration

	Logger *slog.Logger
}

// Result holds the outcome of a run.
type Result struct {
	Records    int // decoded records
	Skipped    int // records that failed to decode
	Extracted  int // pages with markup
	Empty      int // pages whose markup was pruned away
	Duplicates int // pages dropped by dedupe
	Written    int

	// Failures counts records without a page, by error code.
	Failures map[string]int

	Reading    time.Duration
	Processing time.Duration
	Finalizing time.Duration
	Total      time.Duration
}

// Throughput returns records processed per second over d.
func Throughput(records int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(records) / d.Seconds()
}

// extraction holds the outcome of processing a single record.
type extraction struct {
	page *ccqa.Page
	err  error
}

// Run reads the archive at input, extracts a page from every record and
// writes the non-empty pages. Per-record failures are counted in the result;
// only failing to read the archive or to write the output is fatal.
func (m *Minifier) Run(ctx context.Context, input string) (*Result, error) {
	logger := m.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	start := time.Now()
	result := &Result{Failures: map[string]int{}}

	// Reading
	begin := time.Now()
	archive, err := m.Archives.ReadArchive(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	result.Records = len(archive.Records)
	result.Skipped = archive.Skipped
	result.Reading = time.Since(begin)
	logPhase(logger, PhaseReading, result.Records, result.Reading)

	// Processing
	begin = time.Now()
	pages, err := m.process(ctx, logger, archive.Records, result)
	if err != nil {
		return nil, err
	}
	result.Processing = time.Since(begin)
	logPhase(logger, PhaseProcessing, result.Records, result.Processing)

	// Finalizing
	begin = time.Now()
	pages = m.finalize(pages, result)
	if err := m.Writer.WritePages(ctx, pages); err != nil {
		return nil, fmt.Errorf("write pages: %w", err)
	}
	result.Written = len(pages)
	result.Finalizing = time.Since(begin)
	logPhase(logger, PhaseFinalizing, result.Written, result.Finalizing)

	result.Total = time.Since(start)
	logger.Info("run complete",
		"records", result.Records,
		"skipped", result.Skipped,
		"written", result.Written,
		"empty", result.Empty,
		"duplicates", result.Duplicates,
		"duration", result.Total,
		"throughput", Throughput(result.Records, result.Total),
	)

	return result, nil
}

// process fans records out to a bounded worker pool and collects pages in
// completion order.
func (m *Minifier) process(ctx context.Context, logger *slog.Logger, records []*ccqa.RawRecord, result *Result) ([]*ccqa.Page, error) {
	workers := m.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	interval := m.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	resultCh := make(chan extraction, workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	go func() {
		for _, rec := range records {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				page, err := m.Extractor.Extract(rec)
				resultCh <- extraction{page: page, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	progress := rate.Sometimes{Interval: interval}
	var pages []*ccqa.Page
	var completed int
	for r := range resultCh {
		completed++
		if r.err != nil {
			result.Failures[ccqa.ErrorCode(r.err)]++
		} else if r.page != nil {
			pages = append(pages, r.page)
		}
		progress.Do(func() {
			logger.Info("processing",
				"completed", completed,
				"total", len(records),
				"pages", len(pages),
			)
		})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pages, nil
}

// finalize drops pages without markup and, when enabled, repeated URIs.
func (m *Minifier) finalize(pages []*ccqa.Page, result *Result) []*ccqa.Page {
	var filter *bloom.Filter
	if m.Dedupe {
		filter = bloom.NewFilter(uint(len(pages)), dedupeFalsePositiveRate)
	}

	kept := make([]*ccqa.Page, 0, len(pages))
	for _, p := range pages {
		if p.MHTML == "" {
			result.Empty++
			continue
		}
		result.Extracted++
		if filter != nil && filter.Seen(p.URI) {
			result.Duplicates++
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func logPhase(logger *slog.Logger, phase Phase, records int, d time.Duration) {
	logger.Info("phase complete",
		"phase", phase,
		"records", records,
		"duration", d,
		"throughput", Throughput(records, d),
	)
}
