package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/gutentext/internal/gutenberg"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestInitConfig_Defaults(t *testing.T) {
	resetViper(t)

	InitConfig()

	assert.False(t, OverwriteFiles)
	assert.Equal(t, gutenberg.DefaultMirror, Mirror)
	assert.Equal(t, gutenberg.DefaultCacheURL, CacheURL)
	assert.Equal(t, []string{"", "-8", "-0"}, Suffixes)
	assert.Equal(t, 30*time.Second, RequestTimeout)
	assert.Equal(t, 1, Workers)
	assert.Equal(t, "text_id", IDColumn)
	assert.Equal(t, "text_data", TextColumn)
	assert.Equal(t, "./markdown/", viper.GetString("MarkdownOutputDir"))
}

func TestInitConfig_Overrides(t *testing.T) {
	resetViper(t)

	viper.Set("OverwriteFiles", true)
	viper.Set("gutenberg.mirror", "http://mirror.local/ebooks")
	viper.Set("gutenberg.suffixes", []string{"-0"})
	viper.Set("gutenberg.timeout", "5s")
	viper.Set("enrich.workers", 0)
	viper.Set("enrich.text_column", "body")

	InitConfig()

	assert.True(t, OverwriteFiles)
	assert.Equal(t, "http://mirror.local/ebooks", Mirror)
	assert.Equal(t, []string{"-0"}, Suffixes)
	assert.Equal(t, 5*time.Second, RequestTimeout)
	assert.Equal(t, 1, Workers)
	assert.Equal(t, "body", TextColumn)
}

func TestSetOverwriteFiles(t *testing.T) {
	originalValue := OverwriteFiles
	t.Cleanup(func() { OverwriteFiles = originalValue })

	testCases := []struct {
		name     string
		input    bool
		expected bool
	}{
		{name: "set to true", input: true, expected: true},
		{name: "set to false", input: false, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			SetOverwriteFiles(tc.input)
			assert.Equal(t, tc.expected, OverwriteFiles)
		})
	}
}
