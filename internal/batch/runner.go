// Package batch drives a full analysis run: obtain every article's text,
// score the batch and record the outcome.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/textmetrics"
	"github.com/tsawler/textmetrics/internal/cache"
	"github.com/tsawler/textmetrics/internal/fetch"
	"github.com/tsawler/textmetrics/internal/observability"
	"github.com/tsawler/textmetrics/internal/store"
	"github.com/tsawler/textmetrics/internal/tabular"
)

// Fetcher retrieves the text of one article page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Result
}

// articlePutter is implemented by caches that also record the source url.
type articlePutter interface {
	PutArticle(ctx context.Context, id, url, text string) error
}

// Options configure a Runner. Every field is optional.
type Options struct {
	Cache   cache.Cache
	History *store.Store
	Metrics *observability.Metrics
	Logger  *log.Logger
	Workers int  // Articles fetched at once; defaults to 1
	Refresh bool // Fetch every article even when its text is cached
}

// Runner ties together cache, fetch, analysis and run history.
type Runner struct {
	analyzer *textmetrics.Analyzer
	fetcher  Fetcher
	cache    cache.Cache
	history  *store.Store
	metrics  *observability.Metrics
	logger   *log.Logger
	workers  int
	refresh  bool
}

// NewRunner constructs a Runner.
func NewRunner(analyzer *textmetrics.Analyzer, fetcher Fetcher, opts Options) *Runner {
	r := &Runner{
		analyzer: analyzer,
		fetcher:  fetcher,
		cache:    opts.Cache,
		history:  opts.History,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		workers:  opts.Workers,
		refresh:  opts.Refresh,
	}
	if r.cache == nil {
		r.cache = cache.Nop{}
	}
	if r.metrics == nil {
		r.metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	if r.logger == nil {
		r.logger = log.New(io.Discard, "", 0)
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r
}

// Report is the outcome of a run. Rows follow the order of the inputs.
type Report struct {
	RunID     uuid.UUID // Zero unless run history is kept
	Rows      []textmetrics.Row
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Run analyzes inputs read from source. Articles whose text cannot be
// obtained are counted as failed and reported with zero metrics; only
// cancellation and history errors fail the run.
func (r *Runner) Run(ctx context.Context, source string, inputs []tabular.Input) (Report, error) {
	start := time.Now()
	var report Report

	if r.history != nil {
		id, err := r.history.CreateRun(ctx, source, len(inputs))
		if err != nil {
			return report, fmt.Errorf("record run: %w", err)
		}
		report.RunID = id
	}

	articles, err := r.collect(ctx, inputs)
	if err != nil {
		return report, err
	}

	analyzeStart := time.Now()
	rows, err := r.analyzer.AnalyzeAll(ctx, articles)
	if err != nil {
		return report, err
	}
	r.metrics.AnalyzeLatency.Observe(time.Since(analyzeStart).Seconds())

	report.Rows = rows
	for _, row := range rows {
		if row.Failed {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}
	r.metrics.ArticlesProcessed.Add(float64(report.Succeeded))
	r.metrics.ArticlesFailed.Add(float64(report.Failed))

	if r.history != nil {
		if err := r.history.SaveRows(ctx, report.RunID, rows); err != nil {
			return report, fmt.Errorf("save run rows: %w", err)
		}
		if err := r.history.FinishRun(ctx, report.RunID, report.Succeeded, report.Failed); err != nil {
			return report, fmt.Errorf("finish run: %w", err)
		}
	}

	report.Duration = time.Since(start)
	r.metrics.RunDuration.Observe(report.Duration.Seconds())
	return report, nil
}

// collect obtains the text of every input, up to workers at a time.
func (r *Runner) collect(ctx context.Context, inputs []tabular.Input) ([]textmetrics.Article, error) {
	articles := make([]textmetrics.Article, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, in := range inputs {
		i, in := i, in
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.logger.Printf("%d. analyzing %s", i+1, in.URL)
			articles[i] = r.load(gctx, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect articles: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("collect articles: %w", err)
	}
	return articles, nil
}

// load returns the article text from the cache, or fetches and caches it.
func (r *Runner) load(ctx context.Context, in tabular.Input) textmetrics.Article {
	art := textmetrics.Article{ID: in.ID, URL: in.URL}

	if !r.refresh {
		text, err := r.cache.Get(ctx, in.ID)
		switch {
		case err == nil:
			r.metrics.CacheHits.Inc()
			art.Text = text
			return art
		case errors.Is(err, cache.ErrMiss):
			r.metrics.CacheMisses.Inc()
		default:
			r.metrics.CacheErrors.Inc()
			r.logger.Printf("warn: read cached text of %s: %v", in.ID, err)
		}
	}

	r.metrics.ArticlesInProgress.Inc()
	fetchStart := time.Now()
	res := r.fetcher.Fetch(ctx, in.URL)
	r.metrics.FetchLatency.Observe(time.Since(fetchStart).Seconds())
	r.metrics.ArticlesInProgress.Dec()

	if !res.OK() {
		r.logger.Printf("warn: %s: %v", in.URL, res.Err)
		art.Err = res.Err
		return art
	}

	r.metrics.ObserveLanguage(res.Lang, res.Reliable)
	if res.Reliable && res.Lang != "" && res.Lang != "en" {
		r.logger.Printf("warn: %s: detected language %q, scoring with the english word lists", in.URL, res.Lang)
	}

	art.Text = res.Text
	if err := r.put(ctx, in, res.Text); err != nil {
		r.metrics.CacheErrors.Inc()
		r.logger.Printf("warn: cache text of %s: %v", in.ID, err)
	}
	return art
}

func (r *Runner) put(ctx context.Context, in tabular.Input, text string) error {
	if p, ok := r.cache.(articlePutter); ok {
		return p.PutArticle(ctx, in.ID, in.URL, text)
	}
	return r.cache.Put(ctx, in.ID, text)
}

// Load obtains the text of a single article the way Run does for each input.
func (r *Runner) Load(ctx context.Context, in tabular.Input) textmetrics.Article {
	return r.load(ctx, in)
}
