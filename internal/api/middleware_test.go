package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"stock-dashboard/observability"
)

func TestResponseWriter(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if rw.statusCode != http.StatusOK {
		t.Errorf("expected default status code 200, got %d", rw.statusCode)
	}

	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("expected status code 404, got %d", rw.statusCode)
	}

	data := []byte("RELIANCE")
	_, _ = rw.Write(data)
	_, _ = rw.Write(data)
	if rw.responseSize != 2*len(data) {
		t.Errorf("expected cumulative response size %d, got %d", 2*len(data), rw.responseSize)
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	observability.SetMetrics(m)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/api/stocks/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, symbol := range []string{"TCS", "INFY"} {
		req := httptest.NewRequest(http.MethodGet, "/api/stocks/"+symbol, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/stocks/{symbol}", "418"))
	if got != 2 {
		t.Errorf("expected 2 requests under the route pattern, got %v", got)
	}
}

func TestMetricsMiddleware_Unmatched(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	observability.SetMetrics(m)

	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/known", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/path/123", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("expected unmatched request recorded once, got %v", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	h := CORSMiddleware("https://dash.example")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("expected next handler to run")
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example" {
		t.Errorf("unexpected allow-origin %q", got)
	}

	called = false
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))
	if called {
		t.Error("preflight should not reach the next handler")
	}
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	prev := observability.Logger
	t.Cleanup(func() { observability.Logger = prev })

	var buf bytes.Buffer
	observability.SetupLogger(observability.LogOptions{Level: slog.LevelDebug, Output: &buf})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware)
	r.Get("/api/stocks/{symbol}", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stocks/TCS", nil))

	out := buf.String()
	if n := strings.Count(out, "request_id="); n != 1 {
		t.Errorf("expected request_id once, got %d in %q", n, out)
	}
	if !strings.Contains(out, "route=/api/stocks/{symbol}") {
		t.Errorf("expected route pattern in %q", out)
	}
	if strings.Contains(out, "/api/stocks/TCS") {
		t.Errorf("raw path should not be logged: %q", out)
	}
}
