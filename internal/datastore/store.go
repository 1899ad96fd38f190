// Package datastore persists enriched records to SQLite or a remote Datasette.
package datastore

import "fmt"

// Store defines the interface for record storage backends
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable creates a new table with the given schema if it doesn't exist
	CreateTable(schema string) error

	// BatchInsert inserts or replaces multiple records in the specified table
	BatchInsert(database string, table string, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}

// Options selects and configures a Store.
type Options struct {
	// Mode is "local" for a SQLite file or "remote" for a Datasette instance.
	Mode      string
	DBFile    string
	RemoteURL string
	APIToken  string
}

// New returns an unconnected Store for opts.
func New(opts Options) (Store, error) {
	switch opts.Mode {
	case "", "local":
		if opts.DBFile == "" {
			return nil, fmt.Errorf("datastore: local mode needs a database file")
		}
		return NewSQLiteStore(opts.DBFile), nil
	case "remote":
		if opts.RemoteURL == "" {
			return nil, fmt.Errorf("datastore: remote mode needs a URL")
		}
		return NewDatasetteClient(opts.RemoteURL, opts.APIToken), nil
	default:
		return nil, fmt.Errorf("datastore: unknown mode %q", opts.Mode)
	}
}
