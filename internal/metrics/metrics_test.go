package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegistry_NilSafe(t *testing.T) {
	var r *Registry
	r.ObserveRefresh("USA", "ok", time.Second)
	r.SetValued("USA", 1, 2)
	r.ObserveProviderRequest("quote_summary", "ok")
	r.ObserveHTTPRequest("GET", "/api/health", 200)
}

func TestRegistry_Counts(t *testing.T) {
	r := NewRegistry()

	r.ObserveRefresh("Korea", "ok", 2*time.Second)
	r.ObserveRefresh("Korea", "ok", 3*time.Second)
	r.SetValued("Korea", 25, 5)
	r.ObserveProviderRequest("timeseries", "error")

	if got := testutil.ToFloat64(r.RefreshTotal.WithLabelValues("Korea", "ok")); got != 2 {
		t.Errorf("expected 2 refreshes, got %v", got)
	}
	if got := testutil.ToFloat64(r.ValuedSecurities.WithLabelValues("Korea", "unvalued")); got != 5 {
		t.Errorf("expected 5 unvalued, got %v", got)
	}
	if got := testutil.ToFloat64(r.ProviderRequests.WithLabelValues("timeseries", "error")); got != 1 {
		t.Errorf("expected 1 provider error, got %v", got)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ObserveHTTPRequest("GET", "/api/v1/markets", 200)

	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `valuemap_http_requests_total{method="GET",route="/api/v1/markets",status="200"} 1`) {
		t.Errorf("expected http counter in exposition, got:\n%s", w.Body.String())
	}
}
