// Package enrich implements the enrich command: it loads a CSV of records,
// fills their text column from Project Gutenberg and writes the results.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lepinkainen/gutentext/internal/config"
	"github.com/lepinkainen/gutentext/internal/gutenberg"
	"github.com/lepinkainen/gutentext/internal/records"
	"github.com/lepinkainen/gutentext/internal/tui"
)

// Options configures one enrich run.
type Options struct {
	Input string
	// Output defaults to Input, which is rewritten in place.
	Output      string
	IDColumn    string
	TextColumn  string
	TitleColumn string
	Workers     int

	WriteJSON  bool
	JSONOutput string

	WriteMarkdown  bool
	MarkdownOutput string
	Covers         bool

	// Confirm answers the overwrite question. Nil asks interactively.
	Confirm records.ConfirmFunc
}

var (
	confirmOverwrite records.ConfirmFunc = tui.ConfirmOverwrite
	newRunID                             = uuid.NewString
	now                                  = time.Now
)

// NewFetcher builds a Fetcher from the global configuration.
func NewFetcher(logger *slog.Logger) *gutenberg.Fetcher {
	return gutenberg.NewFetcher(
		gutenberg.WithMirror(config.Mirror),
		gutenberg.WithCacheURL(config.CacheURL),
		gutenberg.WithSuffixes(config.Suffixes),
		gutenberg.WithTimeout(config.RequestTimeout),
		gutenberg.WithLogger(logger),
	)
}

func (o *Options) applyDefaults() {
	if o.Output == "" {
		o.Output = o.Input
	}
	if o.IDColumn == "" {
		o.IDColumn = config.IDColumn
	}
	if o.TextColumn == "" {
		o.TextColumn = config.TextColumn
	}
	if o.TitleColumn == "" {
		o.TitleColumn = "title"
	}
	if o.Workers < 1 {
		o.Workers = config.Workers
	}
	if o.Confirm == nil {
		o.Confirm = confirmOverwrite
	}
}

// Run enriches the records in opts.Input and writes every enabled output.
// Nothing is written when the overwrite question is declined.
func Run(ctx context.Context, opts Options) (*records.Result, error) {
	if opts.Input == "" {
		return nil, fmt.Errorf("input CSV file is required")
	}
	opts.applyDefaults()
	if opts.IDColumn == opts.TextColumn {
		return nil, fmt.Errorf("text column %q cannot also be the id column", opts.TextColumn)
	}

	c, err := loadCollection(opts.Input, opts.IDColumn, opts.TextColumn)
	if err != nil {
		return nil, err
	}

	runID := newRunID()
	logger := slog.Default().With("run_id", runID)
	fetcher := NewFetcher(logger)

	enricher := &records.Enricher{
		Fetcher:  fetcher,
		Stripper: gutenberg.NewDefaultStripper(gutenberg.WithStripLogger(logger)),
		Confirm:  opts.Confirm,
		Workers:  opts.Workers,
		Progress: logProgress,
		Logger:   logger,
	}

	result, err := enricher.Enrich(ctx, c, opts.IDColumn, opts.TextColumn)
	if err != nil {
		return result, err
	}
	if result.Aborted {
		return result, nil
	}

	if err := writeOutputs(ctx, c, fetcher, runID, opts); err != nil {
		return result, err
	}
	return result, nil
}

func logProgress(processed, total int) {
	if processed == 0 || processed%10 != 0 {
		return
	}

	percentage := "0%"
	if total > 0 {
		percentage = fmt.Sprintf("%.1f%%", float64(processed)/float64(total)*100)
	}

	slog.Info("Fetching texts",
		"processed", processed,
		"total", total,
		"percentage", percentage,
	)
}
