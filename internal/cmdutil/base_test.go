package cmdutil

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestSetupOutputDirCreatesMarkdownAndJSONPaths(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("markdownoutputdir", filepath.Join(tempDir, "markdown"))
	viper.Set("jsonoutputdir", filepath.Join(tempDir, "json"))

	cfg := &BaseCommandConfig{
		ConfigKey:     "gutenberg",
		WriteJSON:     true,
		WriteMarkdown: true,
	}

	require.NoError(t, SetupOutputDir(cfg))

	require.Equal(t, filepath.Join(tempDir, "markdown", "gutenberg"), cfg.OutputDir)
	require.DirExists(t, cfg.OutputDir)
	require.Equal(t, filepath.Join(tempDir, "json", "gutenberg.json"), cfg.JSONOutput)
	require.DirExists(t, filepath.Dir(cfg.JSONOutput))
}

func TestSetupOutputDirUsesProvidedOutputDir(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("markdownoutputdir", tempDir)

	cfg := &BaseCommandConfig{OutputDir: "custom", ConfigKey: "ignored"}
	require.NoError(t, SetupOutputDir(cfg))

	require.Equal(t, filepath.Join(tempDir, "custom"), cfg.OutputDir)
	require.NoDirExists(t, cfg.OutputDir)
	require.Empty(t, cfg.JSONOutput)
}

func TestSetupOutputDirKeepsExplicitJSONPath(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("markdownoutputdir", tempDir)

	cfg := &BaseCommandConfig{
		ConfigKey:  "gutenberg",
		WriteJSON:  true,
		JSONOutput: filepath.Join(tempDir, "out", "texts.json"),
	}
	require.NoError(t, SetupOutputDir(cfg))
	require.Equal(t, filepath.Join(tempDir, "out", "texts.json"), cfg.JSONOutput)
	require.DirExists(t, filepath.Join(tempDir, "out"))
}

func TestSetupOutputDirAbsolutePaths(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("markdownoutputdir", filepath.Join(tempDir, "ignored"))
	viper.Set("gutenberg.output", "configured")

	abs := filepath.Join(tempDir, "notes")
	cfg := &BaseCommandConfig{OutputDir: abs, ConfigKey: "gutenberg", WriteMarkdown: true}
	require.NoError(t, SetupOutputDir(cfg))
	require.Equal(t, abs, cfg.OutputDir)
	require.DirExists(t, abs)
	require.NoDirExists(t, filepath.Join(tempDir, "ignored"))
}

func TestSetupOutputDirFallsBackToConfigSection(t *testing.T) {
	t.Cleanup(viper.Reset)

	tempDir := t.TempDir()
	viper.Set("markdownoutputdir", tempDir)
	viper.Set("gutenberg.output", "configured")

	cfg := &BaseCommandConfig{ConfigKey: "gutenberg"}
	require.NoError(t, SetupOutputDir(cfg))
	require.Equal(t, filepath.Join(tempDir, "configured"), cfg.OutputDir)
}
