package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_CountsRequests(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	handler := m.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api", nil))

	got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "418"))
	if got != 2 {
		t.Fatalf("requests_total{GET,418} = %v, want 2", got)
	}
}

func TestMiddleware_ImplicitOKStatus(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	// handler writes a body without an explicit WriteHeader
	handler := m.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api", nil))

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "200")); got != 1 {
		t.Fatalf("requests_total{GET,200} = %v, want 1", got)
	}
}

func TestMiddleware_SkipPaths(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	skip := map[string]struct{}{"/metrics": {}}
	handler := m.Middleware(skip)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if got := testutil.CollectAndCount(m.RequestsTotal); got != 0 {
		t.Fatalf("requests_total has %d series after skip-path request, want 0", got)
	}
}

func TestTrackIdentifiers_ReadsAtScrape(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	n := 3
	m.TrackIdentifiers("anonymous", func() int { return n })

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() != "ratelimitd_tracked_identifiers" {
			continue
		}
		found = true
		if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 3 {
			t.Fatalf("tracked_identifiers = %v, want 3", got)
		}
	}
	if !found {
		t.Fatal("ratelimitd_tracked_identifiers not registered")
	}

	// gauge reflects the store at scrape time, not registration time
	n = 9
	families, _ = reg.Gather()
	for _, mf := range families {
		if mf.GetName() == "ratelimitd_tracked_identifiers" {
			if got := mf.GetMetric()[0].GetGauge().GetValue(); got != 9 {
				t.Fatalf("tracked_identifiers after change = %v, want 9", got)
			}
		}
	}
}
