// Package metrics holds the Prometheus collectors exported by the API.
//
// All recording methods are safe to call on a nil *Registry, which lets
// components run without metrics in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns the valuemap collectors and the Prometheus registry they are
// registered with.
type Registry struct {
	reg *prometheus.Registry

	RefreshTotal     *prometheus.CounterVec
	RefreshDuration  *prometheus.HistogramVec
	ValuedSecurities *prometheus.GaugeVec
	ProviderRequests *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

// NewRegistry creates and registers all collectors, plus the Go runtime and
// process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		RefreshTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuemap_refresh_total",
				Help: "Market refreshes by outcome",
			},
			[]string{"market", "result"},
		),

		RefreshDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valuemap_refresh_duration_seconds",
				Help:    "Wall time of a market refresh in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"market"},
		),

		ValuedSecurities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "valuemap_valued_securities",
				Help: "Securities in the latest snapshot with and without a valid P/CF",
			},
			[]string{"market", "outcome"},
		),

		ProviderRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuemap_provider_requests_total",
				Help: "Upstream market data requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuemap_http_requests_total",
				Help: "API requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
	}

	r.reg.MustRegister(
		r.RefreshTotal,
		r.RefreshDuration,
		r.ValuedSecurities,
		r.ProviderRequests,
		r.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveRefresh records the outcome and duration of one market refresh.
func (r *Registry) ObserveRefresh(market, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RefreshTotal.WithLabelValues(market, result).Inc()
	r.RefreshDuration.WithLabelValues(market).Observe(elapsed.Seconds())
}

// SetValued publishes the valued/unvalued split of a market's latest dataset.
func (r *Registry) SetValued(market string, valued, unvalued int) {
	if r == nil {
		return
	}
	r.ValuedSecurities.WithLabelValues(market, "valued").Set(float64(valued))
	r.ValuedSecurities.WithLabelValues(market, "unvalued").Set(float64(unvalued))
}

// ObserveProviderRequest counts one upstream request.
func (r *Registry) ObserveProviderRequest(endpoint, status string) {
	if r == nil {
		return
	}
	r.ProviderRequests.WithLabelValues(endpoint, status).Inc()
}

// ObserveHTTPRequest counts one API request.
func (r *Registry) ObserveHTTPRequest(method, route string, status int) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
