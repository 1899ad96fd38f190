package obsidian

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteBuild_SortedKeysAndFlowTags(t *testing.T) {
	fm := NewFrontmatter()
	fm.Set("title", "Moby Dick")
	fm.Set("tags", []string{"gutenberg", "text/fetched"})
	fm.Set("gutenberg_id", "2701")
	fm.Set("ignored", "")

	out, err := (&Note{Frontmatter: fm, Body: "  Call me Ishmael.  "}).Build()
	require.NoError(t, err)

	want := "---\n" +
		"gutenberg_id: \"2701\"\n" +
		"tags: [gutenberg, text/fetched]\n" +
		"title: Moby Dick\n" +
		"---\n" +
		"\nCall me Ishmael.\n"
	assert.Equal(t, want, string(out))
	assert.Equal(t, []string{"gutenberg_id", "tags", "title"}, fm.Keys())
}

func TestNoteBuild_NoFrontmatter(t *testing.T) {
	out, err := (&Note{Body: "text"}).Build()
	require.NoError(t, err)
	assert.Equal(t, "\ntext\n", string(out))
}

func TestFrontmatterSetOverwrites(t *testing.T) {
	fm := NewFrontmatter()
	fm.Set("status", "failed")
	fm.Set("status", "fetched")
	v, ok := fm.Get("status")
	require.True(t, ok)
	assert.Equal(t, "fetched", v)
	assert.Len(t, fm.Keys(), 1)
}

func TestParseFrontmatter(t *testing.T) {
	data, err := ParseFrontmatter([]byte("---\ntitle: X\nwords: 3\n---\n\nbody\n"))
	require.NoError(t, err)
	assert.Equal(t, "X", data["title"])
	assert.Equal(t, 3, data["words"])

	data, err = ParseFrontmatter([]byte("no frontmatter"))
	require.NoError(t, err)
	assert.Empty(t, data)

	_, err = ParseFrontmatter([]byte("---\n: [\n---\n"))
	require.Error(t, err)
}

func TestBuildBookNote_Fetched(t *testing.T) {
	out, err := BuildBookNote(BookText{
		ID:        "2701",
		Title:     "Moby Dick",
		Status:    "fetched",
		Text:      "Call me Ishmael. Some years ago.",
		Source:    "https://www.gutenberg.org/ebooks/2701",
		CoverPath: "attachments/Moby Dick - cover.jpg",
		RunID:     "run-1",
	})
	require.NoError(t, err)

	data, err := ParseFrontmatter(out)
	require.NoError(t, err)
	assert.Equal(t, "2701", data["gutenberg_id"])
	assert.Equal(t, "fetched", data["status"])
	assert.Equal(t, 6, data["words"])
	assert.Equal(t, "attachments/Moby Dick - cover.jpg", data["cover"])
	assert.Equal(t, "run-1", data["run_id"])
	assert.Equal(t, []any{"gutenberg", "text/fetched"}, data["tags"])

	assert.Contains(t, string(out), "![[attachments/Moby Dick - cover.jpg|250]]")
	assert.True(t, strings.HasSuffix(string(out), "Call me Ishmael. Some years ago.\n"))
}

func TestBuildBookNote_FailedHasNoBody(t *testing.T) {
	out, err := BuildBookNote(BookText{ID: "404", Status: "failed", Text: "ignored"})
	require.NoError(t, err)

	data, err := ParseFrontmatter(out)
	require.NoError(t, err)
	assert.Equal(t, "Gutenberg 404", data["title"])
	assert.NotContains(t, data, "words")
	assert.NotContains(t, string(out), "ignored")
	assert.True(t, strings.HasSuffix(string(out), "---\n"))
}

func TestNormalizeTag(t *testing.T) {
	tests := map[string]string{
		"#Gutenberg":         "gutenberg",
		"  Text / Fetched ":  "text-/-fetched",
		"text/fetched":       "text/fetched",
		"Science   Fiction":  "science-fiction",
		"--edge--":           "edge",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeTag(in), in)
	}
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount("one\ttwo\nthree"))
}
