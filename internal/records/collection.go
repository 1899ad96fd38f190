// Package records holds tabular book records and fills their text column from
// Project Gutenberg.
package records

import (
	"fmt"
	"slices"

	"github.com/lepinkainen/gutentext/internal/gutenberg"
)

// TextStatus tells apart a cell that was never filled from one whose fetch failed.
type TextStatus int

const (
	StatusEmpty TextStatus = iota
	StatusFetched
	StatusFailed
)

func (s TextStatus) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusFetched:
		return "fetched"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// TextValue is one cell of a text column.
type TextValue struct {
	Status  TextStatus
	Text    string
	Failure gutenberg.FailureKind
}

// Fetched returns a value holding cleaned text.
func Fetched(text string) TextValue {
	return TextValue{Status: StatusFetched, Text: text}
}

// Failed returns a value recording a failed retrieval.
func Failed(kind gutenberg.FailureKind) TextValue {
	return TextValue{Status: StatusFailed, Failure: kind}
}

// String renders the value for export. Failures render as the sentinel text,
// and a fetched text that stripped to nothing renders as "".
func (v TextValue) String() string {
	switch v.Status {
	case StatusFetched:
		return v.Text
	case StatusFailed:
		return gutenberg.FailureSentinel
	default:
		return ""
	}
}

// ParseTextValue reads an exported cell back into a TextValue. The round trip
// through String is lossy in two ways: the failure kind of a sentinel cell is
// no longer known and is reported as exhausted, and an empty cell parses as
// StatusEmpty even when it held a fetched text that stripped to "".
// The JSON and datastore outputs keep the status column for that reason.
func ParseTextValue(s string) TextValue {
	switch s {
	case "":
		return TextValue{}
	case gutenberg.FailureSentinel:
		return Failed(gutenberg.FailureExhausted)
	default:
		return Fetched(s)
	}
}

// TextColumn is a typed column with one value per row.
type TextColumn []TextValue

// Collection is an ordered table of records. Plain fields are kept as strings;
// text columns are typed.
type Collection struct {
	fields []string
	rows   []map[string]string
	texts  map[string]TextColumn
}

// NewCollection creates a collection with the given field order.
func NewCollection(fields []string) *Collection {
	return &Collection{
		fields: slices.Clone(fields),
		texts:  make(map[string]TextColumn),
	}
}

// AddRow appends a row. Values for unknown fields are kept but not exported.
func (c *Collection) AddRow(values map[string]string) {
	row := make(map[string]string, len(values))
	for k, v := range values {
		row[k] = v
	}
	c.rows = append(c.rows, row)
	for name, col := range c.texts {
		c.texts[name] = append(col, TextValue{})
	}
}

// Len returns the number of rows.
func (c *Collection) Len() int {
	return len(c.rows)
}

// Fields returns the field names in order, text columns included.
func (c *Collection) Fields() []string {
	return slices.Clone(c.fields)
}

// HasColumn reports whether name is a field of the collection.
func (c *Collection) HasColumn(name string) bool {
	return slices.Contains(c.fields, name)
}

// Value returns a plain field of row i.
func (c *Collection) Value(i int, field string) string {
	return c.rows[i][field]
}

// AddTextColumn appends a blank text column. Adding an existing column is an error.
func (c *Collection) AddTextColumn(name string) error {
	if c.HasColumn(name) {
		return fmt.Errorf("column %q already exists", name)
	}
	c.fields = append(c.fields, name)
	c.texts[name] = make(TextColumn, len(c.rows))
	return nil
}

// SetTextColumn installs a full text column, converting a plain field if needed.
func (c *Collection) SetTextColumn(name string, col TextColumn) error {
	if len(col) != len(c.rows) {
		return fmt.Errorf("column %q has %d values, collection has %d rows", name, len(col), len(c.rows))
	}
	if !c.HasColumn(name) {
		c.fields = append(c.fields, name)
	}
	for _, row := range c.rows {
		delete(row, name)
	}
	c.texts[name] = slices.Clone(col)
	return nil
}

// TextColumn returns the typed column name, or nil when it is not a text column.
func (c *Collection) TextColumn(name string) TextColumn {
	col, ok := c.texts[name]
	if !ok {
		return nil
	}
	return slices.Clone(col)
}

// Text returns cell i of text column name.
func (c *Collection) Text(i int, name string) TextValue {
	return c.texts[name][i]
}

// SetText writes cell i of text column name. Concurrent callers must use distinct indices.
func (c *Collection) SetText(i int, name string, v TextValue) {
	c.texts[name][i] = v
}

// Cell returns the exported string form of any field of row i.
func (c *Collection) Cell(i int, field string) string {
	if col, ok := c.texts[field]; ok {
		return col[i].String()
	}
	return c.rows[i][field]
}

// Record returns row i as exported strings keyed by field name.
func (c *Collection) Record(i int) map[string]string {
	out := make(map[string]string, len(c.fields))
	for _, f := range c.fields {
		out[f] = c.Cell(i, f)
	}
	return out
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	out := NewCollection(c.fields)
	for _, row := range c.rows {
		out.AddRow(row)
	}
	for name, col := range c.texts {
		out.texts[name] = slices.Clone(col)
	}
	return out
}

// Equal reports whether both collections hold the same fields, rows and text values.
func (c *Collection) Equal(other *Collection) bool {
	if !slices.Equal(c.fields, other.fields) || len(c.rows) != len(other.rows) || len(c.texts) != len(other.texts) {
		return false
	}
	for i := range c.rows {
		if len(c.rows[i]) != len(other.rows[i]) {
			return false
		}
		for k, v := range c.rows[i] {
			if ov, ok := other.rows[i][k]; !ok || ov != v {
				return false
			}
		}
	}
	for name, col := range c.texts {
		if !slices.Equal(col, other.texts[name]) {
			return false
		}
	}
	return true
}
