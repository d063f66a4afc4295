package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/ccqa/pipeline"
	"github.com/fwojciec/ccqa/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx      context.Context
	Stdout   io.Writer
	Stderr   io.Writer
	Minifier *pipeline.Minifier

	// Store is set when pages are also written to SQLite.
	Store *sqlite.PageStore
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Input   string           `arg:"" type:"path" help:"WARC archive to read (.warc or .warc.gz)"`
	Output  string           `arg:"" type:"path" help:"JSON file to write (created or overwritten)"`
	Workers int              `short:"w" default:"0" env:"CCQA_WORKERS" help:"Concurrent extractions (0 uses every CPU)"`
	Dedupe  bool             `env:"CCQA_DEDUPE" help:"Keep only the first page for each URI"`
	SQLite  string           `name:"sqlite" type:"path" env:"CCQA_SQLITE" placeholder:"PATH" help:"Also store pages in this SQLite database"`
	Verbose bool             `short:"v" env:"CCQA_VERBOSE" help:"Log every extracted record"`
	Version kong.VersionFlag `help:"Print version and exit"`
}

// Run minifies the input archive and prints a summary.
func (c *CLI) Run(deps *Dependencies) error {
	result, err := deps.Minifier.Run(deps.Ctx, c.Input)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Wrote %d pages to %s\n", result.Written, c.Output)
	fmt.Fprintf(deps.Stdout, "  records:    %d (%d skipped)\n", result.Records, result.Skipped)
	fmt.Fprintf(deps.Stdout, "  empty:      %d\n", result.Empty)
	if c.Dedupe {
		fmt.Fprintf(deps.Stdout, "  duplicates: %d\n", result.Duplicates)
	}
	if deps.Store != nil {
		total, err := deps.Store.CountPages(deps.Ctx)
		if err != nil {
			return fmt.Errorf("failed to count stored pages: %w", err)
		}
		fmt.Fprintf(deps.Stdout, "  stored:     %d pages in %s\n", total, c.SQLite)
	}
	fmt.Fprintf(deps.Stdout, "  elapsed:    %s (%.0f records/s)\n",
		result.Total.Round(time.Millisecond), pipeline.Throughput(result.Records, result.Total))
	return nil
}
