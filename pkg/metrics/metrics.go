// Package metrics defines the Prometheus metric collectors used across the
// search engine and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors. A nil *Metrics is valid and
// records nothing, so library code can take one optionally.
type Metrics struct {
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	HydrationDropsTotal  prometheus.Counter
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	ProductsIndexedTotal prometheus.Counter
	ProductsRemovedTotal prometheus.Counter
	IngestEventsTotal    *prometheus.CounterVec
	AnalyticsDropsTotal  prometheus.Counter

	registry *prometheus.Registry
}

// New creates all collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, empty_query).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		HydrationDropsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "search_hydration_drops_total",
				Help: "Ranked products removed before they could be hydrated.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		ProductsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "products_indexed_total",
				Help: "Total product add operations.",
			},
		),
		ProductsRemovedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "products_removed_total",
				Help: "Total product remove operations that removed something.",
			},
		),
		IngestEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ingest_events_total",
				Help: "Product events consumed by type and status (applied, invalid, undecodable).",
			},
			[]string{"type", "status"},
		),
		AnalyticsDropsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "analytics_events_dropped_total",
				Help: "Search events dropped because the collector buffer was full.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.HydrationDropsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ProductsIndexedTotal,
		m.ProductsRemovedTotal,
		m.IngestEventsTotal,
		m.AnalyticsDropsTotal,
		collectors.NewGoCollector(),
	)

	return m
}

// RegisterIndex exposes vocabulary and product counts as gauges read from
// stats at scrape time.
func (m *Metrics) RegisterIndex(stats func() (terms, products int)) {
	if m == nil {
		return
	}
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "index_terms",
				Help: "Number of distinct terms in the vocabulary.",
			},
			func() float64 {
				terms, _ := stats()
				return float64(terms)
			},
		),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "index_products",
				Help: "Number of products stored in the index.",
			},
			func() float64 {
				_, products := stats()
				return float64(products)
			},
		),
	)
}

// ObserveSearch records one executed query.
func (m *Metrics) ObserveSearch(resultType, cacheStatus string, seconds float64, returned int) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	m.SearchLatency.WithLabelValues(cacheStatus).Observe(seconds)
	m.SearchResultsCount.Observe(float64(returned))
}

func (m *Metrics) HydrationDrops(n int) {
	if m == nil || n == 0 {
		return
	}
	m.HydrationDropsTotal.Add(float64(n))
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHitsTotal.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMissesTotal.Inc()
	}
}

func (m *Metrics) ProductIndexed() {
	if m != nil {
		m.ProductsIndexedTotal.Inc()
	}
}

func (m *Metrics) ProductRemoved() {
	if m != nil {
		m.ProductsRemovedTotal.Inc()
	}
}

func (m *Metrics) IngestEvent(eventType, status string) {
	if m != nil {
		m.IngestEventsTotal.WithLabelValues(eventType, status).Inc()
	}
}

func (m *Metrics) AnalyticsDropped() {
	if m != nil {
		m.AnalyticsDropsTotal.Inc()
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
