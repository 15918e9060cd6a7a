// Package metrics holds the Prometheus collectors of the service.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ResolutionsTotal       *prometheus.CounterVec
	ProviderErrorsTotal    *prometheus.CounterVec
	CacheErrorsTotal       *prometheus.CounterVec
	LimiterRejectionsTotal *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_resolutions_total",
				Help: "Successful rate resolutions by source",
			},
			[]string{"source"},
		),

		ProviderErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_provider_errors_total",
				Help: "Provider failures by error code",
			},
			[]string{"code"},
		),

		CacheErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_errors_total",
				Help: "Rate store failures by operation",
			},
			[]string{"op"},
		),

		LimiterRejectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limiter_rejections_total",
				Help: "Requests rejected by the local limiter by window",
			},
			[]string{"window"},
		),
	}
}

func (m *Metrics) ObserveHTTP(path, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(path, method).Observe(d.Seconds())
	m.HTTPRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ObserveResolution(source string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveProviderError(code string) {
	if m == nil {
		return
	}
	m.ProviderErrorsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) ObserveCacheError(op string) {
	if m == nil {
		return
	}
	m.CacheErrorsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveRejection(window string) {
	if m == nil {
		return
	}
	m.LimiterRejectionsTotal.WithLabelValues(window).Inc()
}
