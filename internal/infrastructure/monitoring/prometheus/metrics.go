// Package prometheus registers and serves the service's metrics on a
// dedicated registry, so tests and embedded uses never collide with the
// global default registry.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "phoneworth"

// DefaultHTTPDurationBuckets suit request latencies from sub-millisecond
// cache hits up to cold catalog loads.
var DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// AppMetrics holds every metric the service emits.
type AppMetrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CatalogCacheHitsTotal   prometheus.Counter
	CatalogCacheMissesTotal prometheus.Counter
	CatalogReloadsTotal     *prometheus.CounterVec
	CatalogPhones           prometheus.Gauge

	ValuationRequestsTotal *prometheus.CounterVec
	RecommendationDuration prometheus.Histogram
}

// NewAppMetrics builds and registers the metric set on a fresh registry.
func NewAppMetrics() *AppMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	m := &AppMetrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration",
			Buckets:   DefaultHTTPDurationBuckets,
		}, []string{"method", "path"}),
		CatalogCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_hits_total",
			Help:      "Catalog snapshot cache hits",
		}),
		CatalogCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_misses_total",
			Help:      "Catalog snapshot cache misses",
		}),
		CatalogReloadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog reload attempts",
		}, []string{"result"}),
		CatalogPhones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_phones",
			Help:      "Phones in the current catalog snapshot",
		}),
		ValuationRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuation_requests_total",
			Help:      "Valuation evaluations by model family",
		}, []string{"family", "result"}),
		RecommendationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_duration_seconds",
			Help:      "End-to-end recommendation scoring duration",
			Buckets:   DefaultHTTPDurationBuckets,
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CatalogCacheHitsTotal,
		m.CatalogCacheMissesTotal,
		m.CatalogReloadsTotal,
		m.CatalogPhones,
		m.ValuationRequestsTotal,
		m.RecommendationDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *AppMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one completed HTTP request.
func (m *AppMetrics) ObserveHTTP(method, path string, status int, took time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(took.Seconds())
}

// CatalogHit implements the catalog store metrics hook.
func (m *AppMetrics) CatalogHit() { m.CatalogCacheHitsTotal.Inc() }

// CatalogMiss implements the catalog store metrics hook.
func (m *AppMetrics) CatalogMiss() { m.CatalogCacheMissesTotal.Inc() }

// CatalogReload implements the catalog store metrics hook.
func (m *AppMetrics) CatalogReload(phones int, err error) {
	if err != nil {
		m.CatalogReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.CatalogReloadsTotal.WithLabelValues("success").Inc()
	m.CatalogPhones.Set(float64(phones))
}

// ObserveValuation records one valuation evaluation.
func (m *AppMetrics) ObserveValuation(family string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ValuationRequestsTotal.WithLabelValues(family, result).Inc()
}
