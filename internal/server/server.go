// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/textmetrics"
	"github.com/tsawler/textmetrics/internal/observability"
	"github.com/tsawler/textmetrics/internal/tabular"
)

// maxBatch caps the number of articles in one batch request.
const maxBatch = 500

// ArticleLoader obtains the text of an article by url.
type ArticleLoader interface {
	Load(ctx context.Context, in tabular.Input) textmetrics.Article
}

// Server wires together HTTP handlers and dependencies.
type Server struct {
	analyzer *textmetrics.Analyzer
	loader   ArticleLoader
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	fetchers int
}

// NewServer builds a Server. loader may be nil, in which case requests must
// carry their text. gatherer backs the /metrics endpoint.
func NewServer(analyzer *textmetrics.Analyzer, loader ArticleLoader, metrics *observability.Metrics, gatherer prometheus.Gatherer, fetchers int) *Server {
	if fetchers < 1 {
		fetchers = 1
	}
	return &Server{
		analyzer: analyzer,
		loader:   loader,
		metrics:  metrics,
		gatherer: gatherer,
		fetchers: fetchers,
	}
}

// RegisterRoutes attaches routes to the provided Echo router.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("8M"))
	e.Use(MetricsMiddleware(s.metrics))

	e.GET("/healthz", s.handleHealthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := e.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/analyze/batch", s.handleAnalyzeBatch)
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type analyzeRequest struct {
	ID   string  `json:"id"`
	URL  string  `json:"url"`
	Text *string `json:"text"`
}

// hasText reports whether the request body is analyzed as given. An empty
// text is a valid article unless a url is supplied to fetch instead.
func (req analyzeRequest) hasText() bool {
	if req.Text == nil {
		return false
	}
	return strings.TrimSpace(*req.Text) != "" || strings.TrimSpace(req.URL) == ""
}

type rowResponse struct {
	textmetrics.Row
	Error string `json:"error,omitempty"`
}

type batchResponse struct {
	Rows      []rowResponse `json:"rows"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

func (s *Server) validate(req analyzeRequest) string {
	switch {
	case req.hasText():
		return ""
	case strings.TrimSpace(req.URL) == "":
		return "text or url is required"
	case s.loader == nil:
		return "fetching by url is disabled"
	}
	return ""
}

func (s *Server) article(ctx context.Context, req analyzeRequest) textmetrics.Article {
	if req.hasText() {
		return textmetrics.Article{ID: req.ID, URL: req.URL, Text: *req.Text}
	}
	return s.loader.Load(ctx, tabular.Input{ID: req.ID, URL: strings.TrimSpace(req.URL)})
}

func respond(row textmetrics.Row, art textmetrics.Article) rowResponse {
	resp := rowResponse{Row: row}
	if art.Err != nil {
		resp.Error = art.Err.Error()
	}
	return resp
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if msg := s.validate(req); msg != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
	}

	art := s.article(c.Request().Context(), req)
	row := s.analyzer.AnalyzeArticle(art)
	s.count(row)
	return c.JSON(http.StatusOK, respond(row, art))
}

func (s *Server) handleAnalyzeBatch(c echo.Context) error {
	var reqs []analyzeRequest
	if err := c.Bind(&reqs); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if len(reqs) > maxBatch {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{"error": "too many articles"})
	}
	for _, req := range reqs {
		if msg := s.validate(req); msg != "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
		}
	}

	ctx := c.Request().Context()
	articles := make([]textmetrics.Article, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchers)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			articles[i] = s.article(gctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rows, err := s.analyzer.AnalyzeAll(ctx, articles)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "request canceled"})
	}

	resp := batchResponse{Rows: make([]rowResponse, len(rows))}
	for i, row := range rows {
		s.count(row)
		resp.Rows[i] = respond(row, articles[i])
		if row.Failed {
			resp.Failed++
		} else {
			resp.Succeeded++
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) count(row textmetrics.Row) {
	if row.Failed {
		s.metrics.ArticlesFailed.Inc()
		return
	}
	s.metrics.ArticlesProcessed.Inc()
}
