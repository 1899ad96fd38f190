package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lepinkainen/gutentext/internal/cmdutil"
	"github.com/lepinkainen/gutentext/internal/config"
	"github.com/lepinkainen/gutentext/internal/csvutil"
	"github.com/lepinkainen/gutentext/internal/datastore"
	"github.com/lepinkainen/gutentext/internal/fileutil"
	"github.com/lepinkainen/gutentext/internal/gutenberg"
	"github.com/lepinkainen/gutentext/internal/obsidian"
	"github.com/lepinkainen/gutentext/internal/records"
)

func writeOutputs(ctx context.Context, c *records.Collection, fetcher *gutenberg.Fetcher, runID string, opts Options) error {
	if err := csvutil.WriteCSV(opts.Output, c.Fields(), collectionRows(c)); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	slog.Info("Wrote CSV file", "filename", opts.Output, "rows", c.Len())

	texts := buildTextRecords(c, runID, opts)

	base := &cmdutil.BaseCommandConfig{
		OutputDir:     opts.MarkdownOutput,
		ConfigKey:     "gutenberg",
		JSONOutput:    opts.JSONOutput,
		WriteJSON:     opts.WriteJSON,
		WriteMarkdown: opts.WriteMarkdown,
	}
	if opts.WriteJSON || opts.WriteMarkdown {
		if err := cmdutil.SetupOutputDir(base); err != nil {
			return err
		}
	}

	if opts.WriteJSON {
		if _, err := fileutil.WriteJSONFile(texts, base.JSONOutput, true); err != nil {
			slog.Error("Error writing texts to JSON", "error", err)
		}
	}

	if err := cmdutil.WriteToDatastore(texts, datastore.TextsSchema, datastore.TextsTable, "Gutenberg texts", textRecordToMap); err != nil {
		slog.Error("Error writing texts to datastore", "error", err)
	}

	if opts.WriteMarkdown {
		writeNotes(ctx, texts, fetcher, base.OutputDir, opts.Covers)
	}
	return nil
}

func buildTextRecords(c *records.Collection, runID string, opts Options) []datastore.TextRecord {
	fetchedAt := now().UTC().Format(time.RFC3339)
	out := make([]datastore.TextRecord, c.Len())
	for i := range out {
		v := c.Text(i, opts.TextColumn)
		r := datastore.TextRecord{
			RunID:       runID,
			RowIndex:    i,
			GutenbergID: c.Value(i, opts.IDColumn),
			Title:       c.Value(i, opts.TitleColumn),
			Status:      v.Status.String(),
			FetchedAt:   fetchedAt,
		}
		switch v.Status {
		case records.StatusFetched:
			r.Text = v.Text
			r.WordCount = obsidian.WordCount(v.Text)
		case records.StatusFailed:
			r.Failure = v.Failure.String()
		}
		out[i] = r
	}
	return out
}

func textRecordToMap(r datastore.TextRecord) map[string]any {
	return cmdutil.StructToMap(r, cmdutil.StructToMapOptions{})
}

// writeNotes writes one note per record. Errors on single notes are logged
// and do not stop the others.
func writeNotes(ctx context.Context, texts []datastore.TextRecord, fetcher *gutenberg.Fetcher, dir string, covers bool) {
	written := 0
	for _, r := range texts {
		book := obsidian.BookText{
			ID:     r.GutenbergID,
			Title:  r.Title,
			Status: r.Status,
			Text:   r.Text,
			Source: strings.TrimRight(config.Mirror, "/") + "/" + r.GutenbergID,
			RunID:  r.RunID,
		}

		if covers && r.Status == records.StatusFetched.String() && r.GutenbergID != "" {
			cover, err := fileutil.DownloadCover(ctx, fileutil.CoverDownloadOptions{
				URL:       fetcher.CoverURL(r.GutenbergID),
				OutputDir: dir,
				Filename:  fileutil.BuildCoverFilename(book.DisplayTitle()),
				Overwrite: config.OverwriteFiles,
			})
			if err != nil {
				slog.Warn("Could not download cover", "id", r.GutenbergID, "error", err)
			} else if cover != nil {
				book.CoverPath = cover.RelativePath
			}
		}

		content, err := obsidian.BuildBookNote(book)
		if err != nil {
			slog.Error("Error building note", "id", r.GutenbergID, "error", err)
			continue
		}
		path := fileutil.GetMarkdownFilePath(book.DisplayTitle(), dir)
		ok, err := fileutil.WriteFileWithOverwrite(path, content, 0o644, config.OverwriteFiles)
		if err != nil {
			slog.Error("Error writing note", "path", path, "error", err)
			continue
		}
		if ok {
			written++
		}
	}
	slog.Info("Wrote notes", "directory", dir, "written", written, "total", len(texts))
}
