package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tsawler/textmetrics"
	"github.com/tsawler/textmetrics/internal/cache"
	"github.com/tsawler/textmetrics/internal/fetch"
	"github.com/tsawler/textmetrics/internal/observability"
	"github.com/tsawler/textmetrics/internal/store"
	"github.com/tsawler/textmetrics/internal/tabular"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]fetch.Result
	calls map[string]int
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	f := &fakeFetcher{pages: map[string]fetch.Result{}, calls: map[string]int{}}
	for url, text := range pages {
		f.pages[url] = fetch.Result{URL: url, FinalURL: url, Text: text, Lang: "en", Reliable: true}
	}
	return f
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) fetch.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if res, ok := f.pages[url]; ok {
		return res
	}
	return fetch.Result{URL: url, Err: fmt.Errorf("fetch %s: %w", url, fetch.ErrNotFound)}
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.data[id]
	if !ok {
		return "", cache.ErrMiss
	}
	return text, nil
}

func (m *memoryCache) Put(_ context.Context, id, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = text
	return nil
}

func (m *memoryCache) Close() error { return nil }

func newTestAnalyzer(t *testing.T) *textmetrics.Analyzer {
	t.Helper()
	lex := textmetrics.NewLexicon(textmetrics.LexiconSources{
		Stopwords: []string{"the"},
		Positive:  []string{"good", "rose"},
		Negative:  []string{"bad", "fell"},
	})
	a, err := textmetrics.NewAnalyzer(lex)
	if err != nil {
		t.Fatalf("NewAnalyzer() error: %v", err)
	}
	return a
}

func testInputs() []tabular.Input {
	return []tabular.Input{
		{ID: "1", URL: "https://example.com/1"},
		{ID: "2", URL: "https://example.com/missing"},
		{ID: "3", URL: "https://example.com/3"},
	}
}

func testPages() map[string]string {
	return map[string]string{
		"https://example.com/1": "Markets rose today. The outlook is good.",
		"https://example.com/3": "Prices fell sharply. It was a bad week for us.",
	}
}

func TestRun(t *testing.T) {
	var logs bytes.Buffer
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	a := newTestAnalyzer(t)

	r := NewRunner(a, newFakeFetcher(testPages()), Options{
		Cache:   newMemoryCache(),
		Metrics: metrics,
		Logger:  log.New(&logs, "", 0),
		Workers: 2,
	})

	report, err := r.Run(context.Background(), "Input.xlsx", testInputs())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if report.Succeeded != 2 || report.Failed != 1 {
		t.Errorf("Succeeded = %d, Failed = %d, want 2 and 1", report.Succeeded, report.Failed)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("Rows = %d, want 3", len(report.Rows))
	}
	for i, in := range testInputs() {
		if report.Rows[i].ID != in.ID || report.Rows[i].URL != in.URL {
			t.Errorf("Row %d = %s %s, want %s %s", i, report.Rows[i].ID, report.Rows[i].URL, in.ID, in.URL)
		}
	}
	if !report.Rows[1].Failed || report.Rows[1].Features != textmetrics.Zero() {
		t.Errorf("Missing article row = %+v, want failed zeros", report.Rows[1])
	}
	want := a.Analyze(testPages()["https://example.com/1"])
	if report.Rows[0].Features != want {
		t.Errorf("Row 0 features = %+v, want %+v", report.Rows[0].Features, want)
	}

	if got := testutil.ToFloat64(metrics.ArticlesProcessed); got != 2 {
		t.Errorf("articles processed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.ArticlesFailed); got != 1 {
		t.Errorf("articles failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.CacheMisses); got != 3 {
		t.Errorf("cache misses = %v, want 3", got)
	}

	out := logs.String()
	for _, want := range []string{"1. analyzing https://example.com/1", "3. analyzing https://example.com/3", "warn: https://example.com/missing"} {
		if !strings.Contains(out, want) {
			t.Errorf("Log missing %q:\n%s", want, out)
		}
	}
}

func TestRunUsesCache(t *testing.T) {
	fetcher := newFakeFetcher(testPages())
	c := newMemoryCache()
	c.data["3"] = "Cached text about good things."
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	r := NewRunner(newTestAnalyzer(t), fetcher, Options{Cache: c, Metrics: metrics})
	if _, err := r.Run(context.Background(), "in", testInputs()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if n := fetcher.callCount("https://example.com/3"); n != 0 {
		t.Errorf("Cached article fetched %d times", n)
	}
	if c.data["1"] != testPages()["https://example.com/1"] {
		t.Errorf("Fetched text not cached: %q", c.data["1"])
	}
	if _, ok := c.data["2"]; ok {
		t.Error("Failed fetch must not be cached")
	}
	if got := testutil.ToFloat64(metrics.CacheHits); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}

	// A second run is served entirely from the cache, except for the failure.
	if _, err := r.Run(context.Background(), "in", testInputs()); err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if n := fetcher.callCount("https://example.com/1"); n != 1 {
		t.Errorf("Article 1 fetched %d times, want 1", n)
	}
	if n := fetcher.callCount("https://example.com/missing"); n != 2 {
		t.Errorf("Missing article fetched %d times, want 2", n)
	}
}

func TestRunRefresh(t *testing.T) {
	fetcher := newFakeFetcher(testPages())
	c := newMemoryCache()
	c.data["1"] = "stale"

	r := NewRunner(newTestAnalyzer(t), fetcher, Options{Cache: c, Refresh: true})
	if _, err := r.Run(context.Background(), "in", testInputs()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if fetcher.callCount("https://example.com/1") != 1 {
		t.Error("Refresh must fetch cached articles")
	}
	if c.data["1"] == "stale" {
		t.Error("Refresh must overwrite the cached text")
	}
}

func TestRunHistory(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	defer s.Close()

	c := cache.NewStore(s, false)
	r := NewRunner(newTestAnalyzer(t), newFakeFetcher(testPages()), Options{Cache: c, History: s})

	ctx := context.Background()
	report, err := r.Run(ctx, "Input.xlsx", testInputs())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	run, err := s.GetRun(ctx, report.RunID)
	if err != nil {
		t.Fatalf("GetRun() error: %v", err)
	}
	if run.Articles != 3 || run.Succeeded != 2 || run.Failed != 1 || run.FinishedAt == nil {
		t.Errorf("Run = %+v", run)
	}

	rows, err := s.RunRows(ctx, report.RunID)
	if err != nil {
		t.Fatalf("RunRows() error: %v", err)
	}
	for i := range report.Rows {
		if rows[i] != report.Rows[i] {
			t.Errorf("Stored row %d = %+v, want %+v", i, rows[i], report.Rows[i])
		}
	}

	if text, err := s.GetText(ctx, "1"); err != nil || text == "" {
		t.Errorf("Fetched text not stored: %q, %v", text, err)
	}
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(newTestAnalyzer(t), newFakeFetcher(testPages()), Options{})
	if _, err := r.Run(ctx, "in", testInputs()); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestRunEmpty(t *testing.T) {
	r := NewRunner(newTestAnalyzer(t), newFakeFetcher(nil), Options{})
	report, err := r.Run(context.Background(), "in", nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.Rows) != 0 || report.Succeeded != 0 || report.Failed != 0 {
		t.Errorf("Run(nil) = %+v", report)
	}
}

func TestLoad(t *testing.T) {
	r := NewRunner(newTestAnalyzer(t), newFakeFetcher(testPages()), Options{})
	art := r.Load(context.Background(), tabular.Input{ID: "x", URL: "https://example.com/1"})
	if !art.Available() || art.Text == "" {
		t.Errorf("Load() = %+v", art)
	}
	art = r.Load(context.Background(), tabular.Input{ID: "y", URL: "https://example.com/none"})
	if art.Available() || !errors.Is(art.Err, fetch.ErrNotFound) {
		t.Errorf("Load(missing) err = %v, want ErrNotFound", art.Err)
	}
}
