// Package fetch downloads article pages and extracts their text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tsawler/textmetrics/internal/config"
)

// maxBodySize caps how much of a response is read.
const maxBodySize = 10 << 20

var (
	// ErrNotFound reports a 404 or 410 response.
	ErrNotFound = errors.New("page not found")
	// ErrNoContent reports a page without extractable article text.
	ErrNoContent = errors.New("no article content")
)

// StatusError reports a response whose status is not 200 OK.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Is makes 404 and 410 responses match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && (e.Code == http.StatusNotFound || e.Code == http.StatusGone)
}

// Result is the outcome of fetching one article. Err is set when no text
// could be obtained; the other fields are then best effort.
type Result struct {
	URL      string
	FinalURL string
	Title    string
	Text     string
	Lang     string
	Reliable bool // Whether Lang was detected with confidence
	Err      error
}

// OK reports whether the fetch produced article text.
func (r Result) OK() bool {
	return r.Err == nil
}

// Options configure a Fetcher.
type Options struct {
	Timeout         time.Duration
	UserAgent       string
	Rate            float64 // Requests per second; 0 disables limiting
	Burst           int
	TitleSelector   string
	ContentSelector string
	Readability     bool // Fall back to readability extraction when ContentSelector matches nothing
	Client          *http.Client
}

// Fetcher retrieves article pages over HTTP.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    Options
}

// New constructs a Fetcher.
func New(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Fetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		opts:    opts,
	}
}

// FromConfig constructs a Fetcher from the fetch section of the config.
func FromConfig(cfg config.FetchConfig) *Fetcher {
	return New(Options{
		Timeout:         cfg.Timeout,
		UserAgent:       cfg.UserAgent,
		Rate:            cfg.Rate,
		Burst:           cfg.Burst,
		TitleSelector:   cfg.TitleSelector,
		ContentSelector: cfg.ContentSelector,
		Readability:     cfg.Readability,
	})
}

// Fetch downloads target and extracts its article text. Failures are
// reported in Result.Err, never as a panic or a partial text.
func (f *Fetcher) Fetch(ctx context.Context, target string) Result {
	res := Result{URL: target, FinalURL: target}

	body, finalURL, err := f.download(ctx, target)
	if err != nil {
		res.Err = err
		return res
	}
	res.FinalURL = finalURL

	page, err := Extract(finalURL, body, ExtractOptions{
		TitleSelector:   f.opts.TitleSelector,
		ContentSelector: f.opts.ContentSelector,
		Readability:     f.opts.Readability,
	})
	if err != nil {
		res.Err = fmt.Errorf("extract %s: %w", target, err)
		return res
	}

	res.Title = page.Title
	res.Text = page.Text
	res.Lang, res.Reliable = DetectLanguage(page.Text)
	return res
}

func (f *Fetcher) download(ctx context.Context, target string) ([]byte, string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("wait for rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: %w", target, &StatusError{Code: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return body, finalURL, nil
}
