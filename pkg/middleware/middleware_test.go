package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func resetMetrics() {
	globalMetricsMu.Lock()
	globalMetrics.Store(nil)
	globalMetricsMu.Unlock()
}

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(reg, promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}

func TestPrometheusCountsRequests(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/about", nil))
	}

	body := scrape(t, reg)
	if !strings.Contains(body, `nextgo_requests_total{route="/about",status="200"} 3`) {
		t.Errorf("missing counter in scrape:\n%s", body)
	}
	if !strings.Contains(body, "nextgo_request_duration_seconds") {
		t.Error("missing duration histogram")
	}
}

func TestPrometheusUsesMatchedRouteLabel(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Nextgo-Route", "/blog/:slug")
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/blog/hello-world", nil))

	body := scrape(t, reg)
	if !strings.Contains(body, `route="/blog/:slug"`) {
		t.Errorf("expected pattern label, got:\n%s", body)
	}
	if strings.Contains(body, `route="/blog/hello-world"`) {
		t.Error("raw path leaked into route label")
	}
}

func TestPrometheusRecordsErrorStatus(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	reg := prometheus.NewRegistry()
	mw := Prometheus(WithRegistry(reg))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/broken", nil))

	body := scrape(t, reg)
	if !strings.Contains(body, `nextgo_requests_total{route="/broken",status="500"} 1`) {
		t.Errorf("missing 500 counter:\n%s", body)
	}
}

func TestRecordHelpers(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))

	RecordRender("/blog/:slug", 5*time.Millisecond)
	RecordMatch(time.Microsecond, true)
	RecordMatch(time.Microsecond, false)
	RecordRebuild(7)

	body := scrape(t, reg)
	if !strings.Contains(body, "nextgo_render_duration_seconds") {
		t.Error("missing render histogram")
	}
	if !strings.Contains(body, "nextgo_route_cache_hits_total 1") {
		t.Error("missing cache hit counter")
	}
	if !strings.Contains(body, "nextgo_route_cache_misses_total 1") {
		t.Error("missing cache miss counter")
	}
	if !strings.Contains(body, "nextgo_routes_registered 7") {
		t.Error("missing routes gauge")
	}
}

func TestRecordHelpersNoopWithoutInit(t *testing.T) {
	resetMetrics()
	defer resetMetrics()

	// Must not panic before Prometheus() initializes the metrics.
	RecordRender("/x", time.Millisecond)
	RecordMatch(time.Microsecond, true)
	RecordRebuild(1)
}

func TestOpenTelemetryPassesThrough(t *testing.T) {
	mw := OpenTelemetry(WithTracerName("test"))

	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if r.Context() == nil {
			t.Error("request context is nil")
		}
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/traced", nil))

	if !called {
		t.Fatal("handler not called")
	}
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestOpenTelemetryFilterSkips(t *testing.T) {
	mw := OpenTelemetry(WithRequestFilter(func(r *http.Request) bool {
		return !strings.HasPrefix(r.URL.Path, "/healthz")
	}))

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
