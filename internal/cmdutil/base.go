package cmdutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BaseCommandConfig holds the output locations shared by commands.
type BaseCommandConfig struct {
	// OutputDir is relative to MarkdownOutputDir unless absolute.
	OutputDir string
	// ConfigKey names the config section ("<key>.output") and the default JSON file.
	ConfigKey  string
	JSONOutput string
	WriteJSON  bool
	// WriteMarkdown controls whether the markdown directory is created
	WriteMarkdown bool
}

// SetupOutputDir resolves cfg's paths against the configured base directories
// and creates the directories that will be written to.
func SetupOutputDir(cfg *BaseCommandConfig) error {
	cfg.OutputDir = resolveUnder(configuredDir("markdownoutputdir", "markdown"), firstNonEmpty(
		cfg.OutputDir,
		viper.GetString(cfg.ConfigKey+".output"),
		cfg.ConfigKey,
	))

	if cfg.WriteJSON && cfg.JSONOutput == "" {
		cfg.JSONOutput = resolveUnder(configuredDir("jsonoutputdir", "json"), cfg.ConfigKey+".json")
	}

	var dirs []string
	if cfg.WriteMarkdown {
		dirs = append(dirs, cfg.OutputDir)
	}
	if cfg.WriteJSON {
		dirs = append(dirs, filepath.Dir(cfg.JSONOutput))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}

func configuredDir(key, fallback string) string {
	if dir := viper.GetString(key); dir != "" {
		return dir
	}
	return fallback
}

func resolveUnder(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
