package cmdutil

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/lepinkainen/gutentext/internal/datastore"
)

// openStore builds the store selected by the datasette.* config keys.
var openStore = func() (datastore.Store, error) {
	return datastore.New(datastore.Options{
		Mode:      viper.GetString("datasette.mode"),
		DBFile:    viper.GetString("datasette.dbfile"),
		RemoteURL: viper.GetString("datasette.remote_url"),
		APIToken:  viper.GetString("datasette.api_token"),
	})
}

// WriteToDatastore writes items to table when datasette output is enabled.
// It does nothing when datasette.enabled is false.
func WriteToDatastore[T any](items []T, schema, table, description string, toMap func(T) map[string]any) error {
	if !viper.GetBool("datasette.enabled") {
		return nil
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	if err := store.Connect(); err != nil {
		return fmt.Errorf("failed to connect to datastore: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateTable(schema); err != nil {
		return err
	}

	rows := make([]map[string]any, len(items))
	for i, item := range items {
		rows[i] = toMap(item)
	}
	if err := store.BatchInsert(datastore.DatabaseName, table, rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", description, err)
	}

	slog.Info("Wrote records to datastore", "what", description, "count", len(rows), "table", table)
	return nil
}
