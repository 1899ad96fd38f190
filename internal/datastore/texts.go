package datastore

// DatabaseName is the Datasette database records are written to.
const DatabaseName = "gutentext"

// TextsTable holds one row per enriched record and run.
const TextsTable = "gutenberg_texts"

// TextsSchema creates TextsTable.
const TextsSchema = `CREATE TABLE IF NOT EXISTS gutenberg_texts (
	run_id TEXT NOT NULL,
	row_index INTEGER NOT NULL,
	gutenberg_id TEXT NOT NULL,
	title TEXT,
	status TEXT NOT NULL,
	failure TEXT,
	word_count INTEGER,
	text TEXT,
	fetched_at TEXT NOT NULL,
	PRIMARY KEY (run_id, row_index)
)`

// TextRecord is one stored row of TextsTable. It doubles as the JSON export shape.
type TextRecord struct {
	RunID       string `json:"run_id"`
	RowIndex    int    `json:"row_index"`
	GutenbergID string `json:"gutenberg_id"`
	Title       string `json:"title,omitempty"`
	Status      string `json:"status"`
	Failure     string `json:"failure,omitempty"`
	WordCount   int    `json:"word_count"`
	Text        string `json:"text,omitempty"`
	FetchedAt   string `json:"fetched_at"`
}
