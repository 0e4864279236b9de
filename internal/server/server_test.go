package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tsawler/textmetrics"
	"github.com/tsawler/textmetrics/internal/observability"
	"github.com/tsawler/textmetrics/internal/tabular"
)

type fakeLoader map[string]string

func (f fakeLoader) Load(_ context.Context, in tabular.Input) textmetrics.Article {
	art := textmetrics.Article{ID: in.ID, URL: in.URL}
	text, ok := f[in.URL]
	if !ok {
		art.Err = errors.New("page not found")
		return art
	}
	art.Text = text
	return art
}

type testServer struct {
	e        *echo.Echo
	analyzer *textmetrics.Analyzer
	metrics  *observability.Metrics
}

func newTestServer(t *testing.T, loader ArticleLoader) *testServer {
	t.Helper()
	lex := textmetrics.NewLexicon(textmetrics.LexiconSources{
		Positive: []string{"good"},
		Negative: []string{"bad"},
	})
	a, err := textmetrics.NewAnalyzer(lex)
	if err != nil {
		t.Fatalf("NewAnalyzer() error: %v", err)
	}
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	e := echo.New()
	NewServer(a, loader, metrics, reg, 2).RegisterRoutes(e)
	return &testServer{e: e, analyzer: a, metrics: metrics}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	rec := ts.do(http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("GET /healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeText(t *testing.T) {
	ts := newTestServer(t, nil)
	text := "This is a good day. Nothing bad happened."

	rec := ts.do(http.MethodPost, "/api/analyze", `{"id":"7","text":"`+text+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/analyze = %d %s", rec.Code, rec.Body.String())
	}

	var got rowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "7" || got.Failed || got.Error != "" {
		t.Errorf("Response = %+v", got)
	}
	if want := ts.analyzer.Analyze(text); got.Features != want {
		t.Errorf("Features = %+v, want %+v", got.Features, want)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"text":`},
		{"empty", `{}`},
		{"url without loader", `{"url":"https://example.com"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := ts.do(http.MethodPost, "/api/analyze", tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("Status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(http.MethodPost, "/api/analyze", `{"id":"1","text":""}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got rowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != "1" || got.Failed || got.Error != "" {
		t.Errorf("Response = %+v", got)
	}
	if want := ts.analyzer.Analyze(""); got.Features != want {
		t.Errorf("Features = %+v, want %+v", got.Features, want)
	}
}

func TestAnalyzeURL(t *testing.T) {
	ts := newTestServer(t, fakeLoader{"https://example.com/a": "A good article."})

	rec := ts.do(http.MethodPost, "/api/analyze", `{"id":"a","url":"https://example.com/a"}`)
	var got rowResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Failed || got.Features.PositiveScore != 1 {
		t.Errorf("Response = %+v", got)
	}

	rec = ts.do(http.MethodPost, "/api/analyze", `{"id":"b","url":"https://example.com/missing"}`)
	got = rowResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !got.Failed || got.Error == "" || got.Features != textmetrics.Zero() {
		t.Errorf("Missing page response = %+v", got)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	ts := newTestServer(t, fakeLoader{"https://example.com/a": "A good article."})

	body := `[
		{"id":"1","text":"Such bad news today."},
		{"id":"2","url":"https://example.com/missing"},
		{"id":"3","url":"https://example.com/a"}
	]`
	rec := ts.do(http.MethodPost, "/api/analyze/batch", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/analyze/batch = %d %s", rec.Code, rec.Body.String())
	}

	var got batchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got.Rows) != 3 || got.Succeeded != 2 || got.Failed != 1 {
		t.Fatalf("Response = %+v", got)
	}
	for i, id := range []string{"1", "2", "3"} {
		if got.Rows[i].ID != id {
			t.Errorf("Row %d id = %q, want %q", i, got.Rows[i].ID, id)
		}
	}
	if got.Rows[0].Features.NegativeScore != -1 {
		t.Errorf("Row 1 negative score = %d, want -1", got.Rows[0].Features.NegativeScore)
	}

	if v := testutil.ToFloat64(ts.metrics.ArticlesFailed); v != 1 {
		t.Errorf("articles failed = %v, want 1", v)
	}
}

func TestAnalyzeBatchTooLarge(t *testing.T) {
	ts := newTestServer(t, nil)
	items := make([]string, maxBatch+1)
	for i := range items {
		items[i] = `{"text":"x"}`
	}
	rec := ts.do(http.MethodPost, "/api/analyze/batch", "["+strings.Join(items, ",")+"]")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Status = %d, want 413", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(http.MethodGet, "/healthz", "")
	ts.do(http.MethodPost, "/api/analyze", `{}`)

	if v := testutil.ToFloat64(ts.metrics.HTTPRequestTotal.WithLabelValues("/healthz", "200")); v != 1 {
		t.Errorf("healthz requests = %v, want 1", v)
	}
	if v := testutil.ToFloat64(ts.metrics.HTTPRequestNon2xxTotal.WithLabelValues("/api/analyze", "400")); v != 1 {
		t.Errorf("non-2xx analyze requests = %v, want 1", v)
	}

	rec := ts.do(http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "textmetrics_http_requests_total") {
		t.Errorf("GET /metrics = %d, body missing request counter", rec.Code)
	}
}
