package obsidian

import (
	"fmt"
	"regexp"
	"strings"
)

// BookText describes one enriched record for note rendering.
type BookText struct {
	ID     string
	Title  string
	Status string
	Text   string
	Source string
	// CoverPath is relative to the note directory; empty when there is no cover.
	CoverPath string
	RunID     string
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// NormalizeTag lowercases a tag and replaces whitespace with hyphens.
// A "/" is kept for nested tags.
func NormalizeTag(tag string) string {
	tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
	tag = whitespace.ReplaceAllString(strings.ToLower(tag), "-")
	tag = hyphens.ReplaceAllString(tag, "-")
	return strings.Trim(tag, "-")
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// DisplayTitle returns the title used for the note and its filename.
func (b BookText) DisplayTitle() string {
	if t := strings.TrimSpace(b.Title); t != "" {
		return t
	}
	return fmt.Sprintf("Gutenberg %s", b.ID)
}

// BuildBookNote renders a record as a note. Failed and empty records get
// metadata only.
func BuildBookNote(b BookText) ([]byte, error) {
	fm := NewFrontmatter()
	fm.Set("title", b.DisplayTitle())
	fm.Set("gutenberg_id", b.ID)
	fm.Set("status", b.Status)
	fm.Set("source", b.Source)
	fm.Set("run_id", b.RunID)
	if b.CoverPath != "" {
		fm.Set("cover", b.CoverPath)
	}

	tags := []string{"gutenberg", NormalizeTag("text/" + b.Status)}
	fm.Set("tags", tags)

	var body strings.Builder
	if b.Status == "fetched" {
		fm.Set("words", WordCount(b.Text))
		if b.CoverPath != "" {
			fmt.Fprintf(&body, "![[%s|250]]\n\n", b.CoverPath)
		}
		body.WriteString(b.Text)
	}

	note := &Note{Frontmatter: fm, Body: body.String()}
	return note.Build()
}
