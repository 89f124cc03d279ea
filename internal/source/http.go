package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/roach88/placer/internal/value"
)

// Defaults for HTTPSource.
const (
	DefaultBatchSize  = 100
	DefaultBatchDelay = 100 * time.Millisecond
	DefaultTimeout    = 10 * time.Second
	maxBodyBytes      = 64 << 20
)

// HTTPSource pulls records from a streaming API.
//
// GET {base}/ returns one record. GET {base}/record/{n} returns n records as
// a JSON array or a {"records": [...]} envelope. Batches are separated by a
// configurable delay. A total of 0 streams until the context is cancelled
// or the API returns an empty batch.
type HTTPSource struct {
	base      string
	client    *http.Client
	batchSize int
	delay     time.Duration
	total     int
	logger    *slog.Logger

	fetched int
	batches int
	buf     []value.Object
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithBatchSize sets the number of records requested per call.
func WithBatchSize(n int) HTTPOption {
	return func(s *HTTPSource) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between batch requests.
func WithBatchDelay(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithTotal limits the stream to n records. Zero means unbounded.
func WithTotal(n int) HTTPOption {
	return func(s *HTTPSource) {
		if n >= 0 {
			s.total = n
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithHTTPLogger sets the logger used for batch progress.
func WithHTTPLogger(l *slog.Logger) HTTPOption {
	return func(s *HTTPSource) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewHTTPSource creates a source reading from baseURL.
func NewHTTPSource(baseURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		base:      strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: DefaultTimeout},
		batchSize: DefaultBatchSize,
		delay:     DefaultBatchDelay,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks that the API answers on its root endpoint.
func (s *HTTPSource) Ping(ctx context.Context) error {
	_, err := s.get(ctx, "/")
	return err
}

// FetchOne returns a single record from GET {base}/.
func (s *HTTPSource) FetchOne(ctx context.Context) (value.Object, error) {
	v, err := s.get(ctx, "/")
	if err != nil {
		return nil, err
	}
	return value.AsRecord(v)
}

// FetchBatch returns up to n records from GET {base}/record/{n}.
func (s *HTTPSource) FetchBatch(ctx context.Context, n int) ([]value.Object, error) {
	v, err := s.get(ctx, fmt.Sprintf("/record/%d", n))
	if err != nil {
		return nil, err
	}
	return recordsFromBatch(v)
}

// Next implements Source.
func (s *HTTPSource) Next(ctx context.Context) (value.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(s.buf) == 0 {
		if err := s.fill(ctx); err != nil {
			return nil, err
		}
	}
	rec := s.buf[0]
	s.buf = s.buf[1:]
	s.fetched++
	return rec, nil
}

func (s *HTTPSource) fill(ctx context.Context) error {
	n := s.batchSize
	if s.total > 0 {
		remaining := s.total - s.fetched
		if remaining <= 0 {
			return io.EOF
		}
		if remaining < n {
			n = remaining
		}
	}

	if s.batches > 0 && s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	batch, err := s.FetchBatch(ctx, n)
	if err != nil {
		return err
	}
	s.batches++
	if len(batch) == 0 {
		return io.EOF
	}
	if len(batch) > n {
		batch = batch[:n]
	}
	s.buf = batch

	s.logger.Debug("batch fetched",
		"batch", s.batches,
		"records", len(batch),
		"fetched", s.fetched+len(batch),
		"total", s.total)
	return nil
}

func (s *HTTPSource) get(ctx context.Context, path string) (value.Value, error) {
	url := s.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", url, err)
	}
	v, err := value.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return v, nil
}

// Close implements Source.
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
