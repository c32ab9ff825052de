package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spektr-org/vizdash/frame"
)

var (
	// ErrUnavailable indicates a source that could not be reached or read.
	ErrUnavailable = errors.New("source: unavailable")
	// ErrMalformed indicates a source whose content is not a usable table.
	ErrMalformed = errors.New("source: malformed")
)

// DefaultTimeout bounds a single remote read.
const DefaultTimeout = 30 * time.Second

// Fetcher reads tabular sources from http(s) URLs or local paths.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client = &http.Client{Timeout: d, Transport: f.client.Transport}
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher returns a Fetcher with a DefaultTimeout client.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: DefaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open returns a reader for location. The caller closes it.
func (f *Fetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if IsRemote(location) {
		return f.openRemote(ctx, location)
	}
	path := strings.TrimPrefix(location, "file://")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return file, nil
}

func (f *Fetcher) openRemote(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: GET %s: %s", ErrUnavailable, url, resp.Status)
	}
	f.logger.Debug("source fetched",
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))
	return resp.Body, nil
}

// Table reads location as CSV.
func (f *Fetcher) Table(ctx context.Context, location string) (*frame.Table, error) {
	rc, err := f.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tbl, err := ReadCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	f.logger.Info("source loaded",
		slog.String("location", location),
		slog.Int("rows", tbl.Len()),
		slog.Int("columns", len(tbl.Columns())))
	return tbl, nil
}

// Tables reads each location as CSV and stacks them. All files must share
// the same header.
func (f *Fetcher) Tables(ctx context.Context, locations ...string) (*frame.Table, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: no locations", ErrUnavailable)
	}
	tables := make([]*frame.Table, 0, len(locations))
	for _, loc := range locations {
		tbl, err := f.Table(ctx, loc)
		if err != nil {
			return nil, err
		}
		tables = append(tables, tbl)
	}
	out, err := frame.Concat(tables...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}
