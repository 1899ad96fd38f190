package gutenberg

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// DefaultHeaderPatterns recognise the end of the license header, oldest dialect first.
var DefaultHeaderPatterns = []string{
	`\*\*\* START OF THIS PROJECT GUTENBERG EBOOK .* \*\*\*`,
	`Project Gutenberg's .*`,
	`START OF THE PROJECT GUTENBERG EBOOK`,
}

// DefaultFooterPatterns recognise the start of the license footer.
var DefaultFooterPatterns = []string{
	`\*\*\* END OF THIS PROJECT GUTENBERG EBOOK .* \*\*\*`,
	`End of Project Gutenberg's .*`,
	`END OF THE PROJECT GUTENBERG EBOOK`,
}

// Stripper removes Project Gutenberg header and footer boilerplate.
// Each side uses the first pattern in its list that matches; the rest are ignored.
type Stripper struct {
	header []*regexp.Regexp
	footer []*regexp.Regexp
	logger *slog.Logger
}

// StripperOption configures a Stripper.
type StripperOption func(*Stripper)

// WithStripLogger sets the logger used for match and miss reports.
func WithStripLogger(logger *slog.Logger) StripperOption {
	return func(s *Stripper) {
		s.logger = logger
	}
}

// NewStripper compiles the header and footer patterns case-insensitively.
func NewStripper(header, footer []string, opts ...StripperOption) (*Stripper, error) {
	s := &Stripper{}
	var err error
	if s.header, err = compilePatterns(header); err != nil {
		return nil, fmt.Errorf("header patterns: %w", err)
	}
	if s.footer, err = compilePatterns(footer); err != nil {
		return nil, fmt.Errorf("footer patterns: %w", err)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewDefaultStripper returns a Stripper using the built-in pattern lists.
func NewDefaultStripper(opts ...StripperOption) *Stripper {
	s, err := NewStripper(DefaultHeaderPatterns, DefaultFooterPatterns, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func (s *Stripper) log() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// Strip returns text without its header and footer boilerplate, trimmed of
// surrounding whitespace. Footer patterns are searched only in what remains
// after the header is removed. Unrecognised boundaries are left untouched.
func (s *Stripper) Strip(text string) string {
	logger := s.log()

	headerFound := false
	for _, re := range s.header {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		text = text[loc[1]:]
		headerFound = true
		logger.Info("Header stripped", "pattern", re.String())
		break
	}
	if !headerFound {
		logger.Warn("No recognizable header found")
	}

	footerFound := false
	for _, re := range s.footer {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		text = text[:loc[0]]
		footerFound = true
		logger.Info("Footer stripped", "pattern", re.String())
		break
	}
	if !footerFound {
		logger.Warn("No recognizable footer found")
	}

	return strings.TrimSpace(text)
}

var defaultStripper = NewDefaultStripper()

// Strip removes boilerplate using the default patterns and logger.
func Strip(text string) string {
	return defaultStripper.Strip(text)
}
