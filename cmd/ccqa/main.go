package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/ccqa"
	"github.com/fwojciec/ccqa/fs"
	"github.com/fwojciec/ccqa/goquery"
	"github.com/fwojciec/ccqa/pipeline"
	ccqaslog "github.com/fwojciec/ccqa/slog"
	"github.com/fwojciec/ccqa/sqlite"
	"github.com/fwojciec/ccqa/warc"
	"github.com/google/uuid"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database, opened only when --sqlite is given.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ccqa"),
		kong.Description("Extract minified schema.org Question markup from a WARC archive"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"version": version},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle no arguments
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	// Handle help and version flags
	if len(args) == 1 {
		switch args[0] {
		case "--help", "-h", "help":
			_, _ = parser.Parse([]string{"--help"})
			return nil
		case "--version":
			_, _ = parser.Parse([]string{"--version"})
			return nil
		}
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	runID := uuid.New().String()
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})).With("run", runID)

	// Wire dependencies
	writers := []ccqa.PageWriter{
		ccqaslog.NewLoggingPageWriter(fs.NewWriter(cli.Output), "json", logger),
	}
	var store *sqlite.PageStore
	if cli.SQLite != "" {
		m.DB = sqlite.NewDB(cli.SQLite)
		if err := m.DB.Open(); err != nil {
			return fmt.Errorf("failed to open database at %q: %w", cli.SQLite, err)
		}
		defer m.Close()
		store = sqlite.NewPageStore(m.DB, runID)
		writers = append(writers, ccqaslog.NewLoggingPageWriter(store, "sqlite", logger))
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Minifier: &pipeline.Minifier{
			Archives:  ccqaslog.NewLoggingArchiveReader(warc.NewArchiveReader(), logger),
			Extractor: ccqaslog.NewLoggingExtractor(goquery.NewExtractor(), logger),
			Writer:    ccqa.MultiPageWriter(writers...),
			Workers:   cli.Workers,
			Dedupe:    cli.Dedupe,
			Logger:    logger,
		},
		Store: store,
	}

	return cli.Run(deps)
}
