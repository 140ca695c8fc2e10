// Package metrics registers the Prometheus collectors for HTTP requests,
// database reads and the page cache.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voleibol_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voleibol_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "voleibol_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voleibol_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voleibol_db_query_duration_seconds",
			Help:    "Duration of data access queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voleibol_db_query_errors_total",
			Help: "Total number of failed data access queries",
		},
		[]string{"query"},
	)

	DBDegradedReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voleibol_db_degraded_reads_total",
			Help: "Reads answered with an empty result because no database is configured",
		},
		[]string{"query"},
	)

	// Page cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voleibol_page_cache_hits_total",
			Help: "Total number of page cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "voleibol_page_cache_misses_total",
			Help: "Total number of page cache misses",
		},
	)
)

// RecordHTTPRequest records one finished request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(active bool) {
	if active {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordQuery records the duration and outcome of one data access query.
func RecordQuery(query string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(query).Inc()
	}
}

// RecordDegradedRead counts a read served empty because the store is unavailable.
func RecordDegradedRead(query string) {
	DBDegradedReads.WithLabelValues(query).Inc()
}

// RecordCacheLookup counts a page cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}
