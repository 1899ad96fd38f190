package records

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/gutentext/internal/gutenberg"
)

// TextFetcher retrieves the raw text of a book.
type TextFetcher interface {
	Fetch(ctx context.Context, id string) (string, error)
}

// TextStripper removes boilerplate from a fetched text.
type TextStripper interface {
	Strip(text string) string
}

// ConfirmFunc asks whether an existing column may be overwritten.
type ConfirmFunc func(column string) (bool, error)

// ProgressFunc is called after each row with the number of finished rows.
// With several workers it may be called concurrently.
type ProgressFunc func(done, total int)

// Result summarises one enrichment run.
type Result struct {
	Aborted bool
	Total   int
	Fetched int
	Failed  int
}

// Enricher fills a text column of a Collection with cleaned book texts.
type Enricher struct {
	Fetcher  TextFetcher
	Stripper TextStripper
	// Confirm is consulted when the text column already exists. Nil declines.
	Confirm ConfirmFunc
	// Workers bounds concurrent rows. Values below 2 process rows in order.
	Workers  int
	Progress ProgressFunc
	Logger   *slog.Logger
}

func (e *Enricher) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Enrich fetches the text of every row's idField and stores the cleaned text in
// textField. A failing row records a failure value and never stops the run.
// When textField exists and Confirm declines, the collection is left untouched.
func (e *Enricher) Enrich(ctx context.Context, c *Collection, idField, textField string) (*Result, error) {
	logger := e.logger()

	if idField == textField {
		return nil, fmt.Errorf("text column %q cannot also be the id column", textField)
	}

	if c.HasColumn(textField) {
		ok := false
		if e.Confirm != nil {
			var err error
			if ok, err = e.Confirm(textField); err != nil {
				return nil, err
			}
		}
		if !ok {
			logger.Info("Operation aborted. No changes were made.", "column", textField)
			return &Result{Aborted: true, Total: c.Len()}, nil
		}
		if _, isText := c.texts[textField]; !isText {
			col := make(TextColumn, c.Len())
			for i := range col {
				col[i] = ParseTextValue(c.Value(i, textField))
			}
			if err := c.SetTextColumn(textField, col); err != nil {
				return nil, err
			}
		}
	} else if err := c.AddTextColumn(textField); err != nil {
		return nil, err
	}

	total := c.Len()
	var done, fetched, failed atomic.Int64

	process := func(i int) {
		value := e.enrichRow(ctx, logger, c.Value(i, idField))
		// A row interrupted by cancellation keeps its previous value.
		if value.Status == StatusFailed && ctx.Err() != nil {
			return
		}
		c.SetText(i, textField, value)
		if value.Status == StatusFetched {
			fetched.Add(1)
		} else {
			failed.Add(1)
		}
		n := done.Add(1)
		if e.Progress != nil {
			e.Progress(int(n), total)
		}
	}

	if e.Workers > 1 {
		g := new(errgroup.Group)
		g.SetLimit(e.Workers)
		for i := 0; i < total; i++ {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				process(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := 0; i < total; i++ {
			if ctx.Err() != nil {
				break
			}
			process(i)
		}
	}

	result := &Result{
		Total:   total,
		Fetched: int(fetched.Load()),
		Failed:  int(failed.Load()),
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("Enrichment cancelled", "done", done.Load(), "total", total)
		return result, err
	}
	logger.Info("Enrichment finished", "fetched", result.Fetched, "failed", result.Failed, "total", total)
	return result, nil
}

func (e *Enricher) enrichRow(ctx context.Context, logger *slog.Logger, id string) TextValue {
	text, err := e.Fetcher.Fetch(ctx, id)
	if err != nil {
		kind := gutenberg.FailureOf(err)
		if kind == gutenberg.FailureNone {
			kind = gutenberg.FailureExhausted
		}
		logger.Warn("Failed to fetch text", "id", id, "kind", kind)
		return Failed(kind)
	}
	return Fetched(e.Stripper.Strip(text))
}
