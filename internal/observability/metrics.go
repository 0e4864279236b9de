package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics captures Prometheus collectors for batch runs and the HTTP API.
type Metrics struct {
	ArticlesProcessed          prometheus.Counter
	ArticlesFailed             prometheus.Counter
	ArticlesInProgress         prometheus.Gauge
	FetchLatency               prometheus.Histogram
	AnalyzeLatency             prometheus.Histogram
	CacheHits                  prometheus.Counter
	CacheMisses                prometheus.Counter
	CacheErrors                prometheus.Counter
	LangDetect                 *prometheus.CounterVec
	LangDetectErrors           prometheus.Counter
	RunDuration                prometheus.Histogram
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	HTTPRequestTotal           *prometheus.CounterVec
	HTTPRequestNon2xxTotal     *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg uses the default
// Prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	const namespace = "textmetrics"
	return &Metrics{
		ArticlesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_processed_total",
			Help:      "Number of articles scored from their fetched or cached text.",
		}),
		ArticlesFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_failed_total",
			Help:      "Number of articles whose text could not be obtained.",
		}),
		ArticlesInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "articles_in_progress",
			Help:      "Number of articles currently being fetched.",
		}),
		FetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent downloading and extracting article pages.",
			Buckets:   prometheus.DefBuckets,
		}),
		AnalyzeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analyze_duration_seconds",
			Help:      "Time spent computing metrics for a batch of articles.",
			Buckets:   prometheus.DefBuckets,
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Number of article texts served from the cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Number of article texts not found in the cache.",
		}),
		CacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_errors_total",
			Help:      "Number of cache reads or writes that failed.",
		}),
		LangDetect: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lang_detect",
			Help:      "Number of reliable language detections grouped by ISO code.",
		}, []string{"lang"}),
		LangDetectErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lang_detect_errors_total",
			Help:      "Number of language detections that failed reliability checks.",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of complete batch runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		HTTPRequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Distribution of HTTP request durations in seconds, labelled by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
		HTTPRequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled, labelled by route and status code.",
		}, []string{"route", "code"}),
		HTTPRequestNon2xxTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_non_2xx_total",
			Help:      "Number of HTTP requests that resulted in non-2xx responses, labelled by route and status code.",
		}, []string{"route", "code"}),
	}
}

// ObserveLanguage counts a language detection result.
func (m *Metrics) ObserveLanguage(lang string, reliable bool) {
	if !reliable || lang == "" {
		m.LangDetectErrors.Inc()
		return
	}
	m.LangDetect.WithLabelValues(lang).Inc()
}

// WriteTextfile writes the metrics gathered by g to path in the text format
// read by the node exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
