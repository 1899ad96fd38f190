package testutil

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/gutentext/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OverwriteFiles bool
	Mirror         string
	CacheURL       string
	Suffixes       []string
	RequestTimeout time.Duration
	Workers        int
	IDColumn       string
	TextColumn     string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		OverwriteFiles: config.OverwriteFiles,
		Mirror:         config.Mirror,
		CacheURL:       config.CacheURL,
		Suffixes:       append([]string(nil), config.Suffixes...),
		RequestTimeout: config.RequestTimeout,
		Workers:        config.Workers,
		IDColumn:       config.IDColumn,
		TextColumn:     config.TextColumn,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.OverwriteFiles = state.OverwriteFiles
	config.Mirror = state.Mirror
	config.CacheURL = state.CacheURL
	config.Suffixes = state.Suffixes
	config.RequestTimeout = state.RequestTimeout
	config.Workers = state.Workers
	config.IDColumn = state.IDColumn
	config.TextColumn = state.TextColumn
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetTestMirror resets configuration and points every download at baseURL,
// as served by an httptest server.
func SetTestMirror(t *testing.T, baseURL string) {
	t.Helper()

	ResetConfig(t)
	viper.Set("gutenberg.mirror", baseURL+"/ebooks")
	viper.Set("gutenberg.cache_url", baseURL+"/cache/epub")
	viper.Set("gutenberg.timeout", "5s")
	config.InitConfig()
}

// SetViperValue sets a viper configuration value and schedules cleanup.
func SetViperValue(t *testing.T, key string, value any) {
	t.Helper()

	oldValue := viper.Get(key)
	hadValue := viper.IsSet(key)

	viper.Set(key, value)

	t.Cleanup(func() {
		// viper has no Unset, so a key that was absent stays set until the next Reset.
		if hadValue {
			viper.Set(key, oldValue)
		}
	})
}

// SetupDatasetteDB enables local datasette output to a database inside env.
// Returns the database path.
func SetupDatasetteDB(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("test.db")
	SetViperValue(t, "datasette.enabled", true)
	SetViperValue(t, "datasette.mode", "local")
	SetViperValue(t, "datasette.dbfile", dbPath)
	return dbPath
}
