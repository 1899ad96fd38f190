// Package gutenberg retrieves book texts from Project Gutenberg mirrors and
// strips the license boilerplate that wraps them.
package gutenberg

import (
	"fmt"
	"strings"
)

const (
	// DefaultMirror is the base URL used to build sharded candidate paths.
	DefaultMirror = "https://www.gutenberg.org/ebooks"
	// DefaultCacheURL is the base of the canonical cache/epub fallback.
	DefaultCacheURL = "https://www.gutenberg.org/cache/epub"
)

// DefaultSuffixes are the file variants tried for each book: plain, 8-bit and UTF-8 editions.
var DefaultSuffixes = []string{"", "-8", "-0"}

// CandidateKind describes the payload a candidate URL is expected to serve.
type CandidateKind int

const (
	// KindArchive is a zipped text file.
	KindArchive CandidateKind = iota
	// KindText is a plain text file on the mirror.
	KindText
	// KindCache is the cache/epub fallback text.
	KindCache
)

func (k CandidateKind) String() string {
	switch k {
	case KindArchive:
		return "archive"
	case KindText:
		return "text"
	case KindCache:
		return "cache"
	default:
		return "unknown"
	}
}

// Candidate is one guessed location of a book's text.
type Candidate struct {
	URL  string
	Kind CandidateKind
}

// ShardPath returns the directory path the mirror stores id under: every
// character except the last, joined by "/". Single-character ids live under "0".
func ShardPath(id string) string {
	runes := []rune(id)
	if len(runes) <= 1 {
		return "0"
	}
	parts := make([]string, 0, len(runes)-1)
	for _, r := range runes[:len(runes)-1] {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, "/")
}

// Candidates lists the mirror URLs that may hold the text of id.
// All archive URLs come first in suffix order, followed by all plain text URLs.
func Candidates(id, mirror string, suffixes []string) []Candidate {
	if id == "" {
		return nil
	}
	mirror = strings.TrimRight(mirror, "/")
	path := ShardPath(id)

	result := make([]Candidate, 0, len(suffixes)*2)
	for _, suffix := range suffixes {
		result = append(result, Candidate{
			URL:  fmt.Sprintf("%s/%s/%s/%s%s.zip", mirror, path, id, id, suffix),
			Kind: KindArchive,
		})
	}
	for _, suffix := range suffixes {
		result = append(result, Candidate{
			URL:  fmt.Sprintf("%s/%s/%s/%s%s.txt", mirror, path, id, id, suffix),
			Kind: KindText,
		})
	}
	return result
}

// CacheCandidate returns the cache/epub fallback location for id.
func CacheCandidate(id, cacheURL string) Candidate {
	return Candidate{
		URL:  fmt.Sprintf("%s/%s/pg%s.txt", strings.TrimRight(cacheURL, "/"), id, id),
		Kind: KindCache,
	}
}

// CoverURL returns the medium-size cover image location for id.
func CoverURL(id, cacheURL string) string {
	return fmt.Sprintf("%s/%s/pg%s.cover.medium.jpg", strings.TrimRight(cacheURL, "/"), id, id)
}
