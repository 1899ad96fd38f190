package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/lepinkainen/gutentext/internal/gutenberg"
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing output files are replaced
	OverwriteFiles bool
	// Mirror is the base URL of the sharded ebook tree
	Mirror string
	// CacheURL is the base URL of the cache/epub fallback and covers
	CacheURL string
	// Suffixes are the file variants tried for each book
	Suffixes []string
	// RequestTimeout bounds each individual download
	RequestTimeout time.Duration
	// Workers is the number of rows enriched concurrently
	Workers int
	// IDColumn names the field holding Gutenberg identifiers
	IDColumn string
	// TextColumn names the field the cleaned text is written to
	TextColumn string
)

// SetDefaults registers default values for every known key.
func SetDefaults() {
	viper.SetDefault("MarkdownOutputDir", "./markdown/")
	viper.SetDefault("JSONOutputDir", "./json/")
	viper.SetDefault("OverwriteFiles", false)

	viper.SetDefault("gutenberg.mirror", gutenberg.DefaultMirror)
	viper.SetDefault("gutenberg.cache_url", gutenberg.DefaultCacheURL)
	viper.SetDefault("gutenberg.suffixes", gutenberg.DefaultSuffixes)
	viper.SetDefault("gutenberg.timeout", gutenberg.DefaultTimeout.String())

	viper.SetDefault("enrich.workers", 1)
	viper.SetDefault("enrich.id_column", "text_id")
	viper.SetDefault("enrich.text_column", "text_data")

	viper.SetDefault("datasette.enabled", false)
	viper.SetDefault("datasette.mode", "local")
	viper.SetDefault("datasette.dbfile", "./gutentext.db")
}

// InitConfig initializes the global configuration
func InitConfig() {
	SetDefaults()

	OverwriteFiles = viper.GetBool("OverwriteFiles")
	Mirror = viper.GetString("gutenberg.mirror")
	CacheURL = viper.GetString("gutenberg.cache_url")
	Suffixes = viper.GetStringSlice("gutenberg.suffixes")
	// An explicitly empty list still means the plain variant only.
	if len(Suffixes) == 0 {
		Suffixes = []string{""}
	}
	RequestTimeout = viper.GetDuration("gutenberg.timeout")
	if RequestTimeout <= 0 {
		RequestTimeout = gutenberg.DefaultTimeout
	}
	Workers = viper.GetInt("enrich.workers")
	if Workers < 1 {
		Workers = 1
	}
	IDColumn = viper.GetString("enrich.id_column")
	TextColumn = viper.GetString("enrich.text_column")
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}
