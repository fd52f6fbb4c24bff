// ABOUTME: Tests for Prometheus metrics
// ABOUTME: Verifies counters, middleware status capture and the scrape handler
package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveLoad(96001, true)
	m.ObserveLoad(4, false)
	m.IncRunsStarted()
	m.IncRunsCompleted()
	m.IncStaleEnds()
	m.IncStaleEnds()

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"loads", testutil.ToFloat64(m.loadsTotal), 2},
		{"decoded bytes", testutil.ToFloat64(m.decodedBytesTotal), 96005},
		{"truncated", testutil.ToFloat64(m.truncatedTotal), 1},
		{"runs started", testutil.ToFloat64(m.runsStartedTotal), 1},
		{"runs completed", testutil.ToFloat64(m.runsCompletedTotal), 1},
		{"stale ends", testutil.ToFloat64(m.staleEndsTotal), 2},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.expected, tt.got)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncRequests()
	m.IncErrors()
	m.ObserveLoad(10, true)
	m.IncRunsStarted()
	m.IncRunsCompleted()
	m.IncStaleEnds()
	m.SetPlayback(1, 2.5)
	m.AddStreamClients(1)
}

func TestRequestMiddleware(t *testing.T) {
	m := New()
	handler := RequestMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("ok"))
	}))

	for _, path := range []string{"/a", "/b", "/missing"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requestsTotal); got != 3 {
		t.Errorf("expected 3 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.errorsTotal); got != 1 {
		t.Errorf("expected 1 error, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	called := false
	srv := httptest.NewServer(m.Handler(func() {
		called = true
		m.SetPlayback(1, 1.5)
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !called {
		t.Error("expected updateGauges to be called")
	}
	if !strings.Contains(string(body), "pcmscope_playback_position_seconds 1.5") {
		t.Errorf("expected position gauge in scrape output, got:\n%s", body)
	}
}
