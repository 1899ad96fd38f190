package enrich

import (
	"fmt"
	"log/slog"

	"github.com/lepinkainen/gutentext/internal/csvutil"
	"github.com/lepinkainen/gutentext/internal/records"
)

// loadCollection reads a CSV file into a Collection. An existing text column
// is parsed back into typed values so a re-run can tell failures from texts.
func loadCollection(filePath, idColumn, textColumn string) (*records.Collection, error) {
	header, rows, err := csvutil.ProcessCSV(filePath, func(r csvutil.Row) (map[string]string, error) {
		return r.Map(), nil
	}, csvutil.ProcessorOptions{RequiredFields: []string{idColumn}})
	if err != nil {
		return nil, err
	}

	c := records.NewCollection(header)
	for _, row := range rows {
		c.AddRow(row)
	}

	if c.HasColumn(textColumn) {
		col := make(records.TextColumn, c.Len())
		for i := range col {
			col[i] = records.ParseTextValue(c.Value(i, textColumn))
		}
		if err := c.SetTextColumn(textColumn, col); err != nil {
			return nil, fmt.Errorf("failed to read column %q: %w", textColumn, err)
		}
	}

	slog.Info("Loaded records", "file", filePath, "rows", c.Len(), "fields", len(header))
	return c, nil
}

// collectionRows renders every row in field order for CSV export.
func collectionRows(c *records.Collection) [][]string {
	fields := c.Fields()
	out := make([][]string, c.Len())
	for i := range out {
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = c.Cell(i, f)
		}
		out[i] = row
	}
	return out
}
