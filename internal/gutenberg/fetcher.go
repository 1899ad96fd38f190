package gutenberg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lepinkainen/gutentext/internal/logscope"
)

// DefaultTimeout bounds every individual candidate request.
const DefaultTimeout = 30 * time.Second

// Fetcher downloads book texts by trying candidate mirror locations in order.
type Fetcher struct {
	client      *http.Client
	mirror      string
	cacheURL    string
	suffixes    []string
	timeout     time.Duration
	maxBodySize int64
	logger      *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithMirror sets the mirror base URL used for sharded candidates.
func WithMirror(mirror string) Option {
	return func(f *Fetcher) {
		f.mirror = mirror
	}
}

// WithCacheURL sets the base URL of the cache/epub fallback.
func WithCacheURL(cacheURL string) Option {
	return func(f *Fetcher) {
		f.cacheURL = cacheURL
	}
}

// WithSuffixes sets the file variant suffixes tried for each book.
func WithSuffixes(suffixes []string) Option {
	return func(f *Fetcher) {
		f.suffixes = append([]string(nil), suffixes...)
	}
}

// WithTimeout sets the per-request timeout.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHTTPClient replaces the HTTP client. The client's own Timeout is kept
// when set; otherwise the Fetcher timeout is applied to it.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithMaxBodySize caps response bodies and decompressed archive entries.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher for the public Gutenberg mirror.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		mirror:      DefaultMirror,
		cacheURL:    DefaultCacheURL,
		suffixes:    append([]string(nil), DefaultSuffixes...),
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	} else if f.client.Timeout == 0 && f.timeout > 0 {
		client := *f.client
		client.Timeout = f.timeout
		f.client = &client
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.maxBodySize <= 0 {
		f.maxBodySize = DefaultMaxBodySize
	}

	return f
}

// CandidatesFor returns every location Fetch tries for id, in order.
func (f *Fetcher) CandidatesFor(id string) []Candidate {
	if id == "" {
		return nil
	}
	candidates := Candidates(id, f.mirror, f.suffixes)
	return append(candidates, CacheCandidate(id, f.cacheURL))
}

// CoverURL returns the cover image location for id on the configured cache host.
func (f *Fetcher) CoverURL(id string) string {
	return CoverURL(id, f.cacheURL)
}

type response struct {
	candidate   Candidate
	contentType string
	body        []byte
}

// Fetch returns the decoded text of book id. Misses on individual candidates
// never abort the search; when nothing usable is found the returned error is a
// *FetchError with Kind FailureExhausted.
func (f *Fetcher) Fetch(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", &FetchError{Kind: FailureInvalidID, Reason: "empty identifier"}
	}

	// Expected misses stay invisible unless the base logger runs at debug level.
	logger := logscope.Quiet(f.logger, slog.LevelError).With("id", id)

	resp, ok := f.firstUsable(ctx, logger, id)
	if !ok {
		logger.Error("All download attempts failed")
		return "", &FetchError{ID: id, Kind: FailureExhausted}
	}

	if isArchive(resp.contentType) {
		text, err := f.decodeArchive(resp.body)
		if err != nil {
			kind := FailureDecode
			var archiveErr archiveError
			if errors.As(err, &archiveErr) {
				kind = FailureArchive
			}
			logger.Error("Could not read archive", "url", resp.candidate.URL, "error", err)
			return "", &FetchError{ID: id, Kind: kind, URL: resp.candidate.URL, Reason: err.Error()}
		}
		return text, nil
	}

	text, err := decodeTransport(resp.body, resp.contentType)
	if err != nil {
		logger.Error("Could not decode text", "url", resp.candidate.URL, "error", err)
		return "", &FetchError{ID: id, Kind: FailureDecode, URL: resp.candidate.URL, Reason: err.Error()}
	}
	return text, nil
}

// firstUsable walks the candidates and returns the first non-empty successful response.
func (f *Fetcher) firstUsable(ctx context.Context, logger *slog.Logger, id string) (*response, bool) {
	for _, candidate := range f.CandidatesFor(id) {
		if err := ctx.Err(); err != nil {
			logger.Error("Fetch cancelled", "error", err)
			return nil, false
		}

		logger.Info("Trying candidate", "url", candidate.URL, "kind", candidate.Kind)

		resp, err := f.get(ctx, candidate)
		if err != nil {
			logger.Error("Error fetching candidate", "url", candidate.URL, "error", err)
			continue
		}
		if resp == nil {
			logger.Debug("Not found, moving to next candidate", "url", candidate.URL)
			continue
		}
		if len(bytes.TrimSpace(resp.body)) == 0 {
			logger.Debug("Empty content, moving to next candidate", "url", candidate.URL)
			continue
		}
		return resp, true
	}
	return nil, false
}

// get performs one candidate request. A nil response with a nil error means 404.
func (f *Fetcher) get(ctx context.Context, candidate Candidate) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, candidate.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", f.maxBodySize)
	}

	return &response{
		candidate:   candidate,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

// archiveError marks problems with the archive container itself.
type archiveError struct{ err error }

func (e archiveError) Error() string { return e.err.Error() }
func (e archiveError) Unwrap() error { return e.err }

func (f *Fetcher) decodeArchive(body []byte) (string, error) {
	entry, err := singleEntry(body)
	if err != nil {
		return "", archiveError{err}
	}
	data, err := readEntry(entry, f.maxBodySize)
	if err != nil {
		return "", archiveError{err}
	}
	text, encoding, err := DecodeDetected(data)
	if err != nil {
		return "", err
	}
	f.logger.Debug("Decoded archive entry", "entry", entry.Name, "encoding", encoding)
	return text, nil
}
