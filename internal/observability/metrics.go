package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the insights service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Query metrics
	QueriesTotal     *prometheus.CounterVec
	QueryDuration    *prometheus.HistogramVec
	FilteredRowCount *prometheus.HistogramVec
	ExportsTotal     *prometheus.CounterVec

	// Cache metrics
	ReportCacheHits   prometheus.Counter
	ReportCacheMisses prometheus.Counter

	// Data metrics
	RecordsLoaded *prometheus.GaugeVec

	// System health metrics
	ServiceUptime   prometheus.Gauge
	ServiceHealthy  prometheus.Gauge
	LastHealthCheck prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
			},
			[]string{"method", "path"},
		),

		QueriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "queries_total",
				Help:      "Total number of analytics queries",
			},
			[]string{"endpoint"},
		),
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "query_duration_seconds",
				Help:      "Filter and aggregation duration in seconds",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{"endpoint"},
		),
		FilteredRowCount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "filtered_row_count",
				Help:      "Row count distribution of filtered result sets",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"endpoint"},
		),
		ExportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "exports_total",
				Help:      "Total number of export downloads",
			},
			[]string{"format"},
		),

		ReportCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "report_cache_hits_total",
				Help:      "Total number of report cache hits",
			},
		),
		ReportCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "report_cache_misses_total",
				Help:      "Total number of report cache misses",
			},
		),

		RecordsLoaded: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "records_loaded",
				Help:      "Number of rows loaded per table",
			},
			[]string{"table"},
		),

		ServiceUptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_uptime_seconds",
				Help:      "Service uptime in seconds",
			},
		),
		ServiceHealthy: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_healthy",
				Help:      "Service health status (1 = healthy, 0 = unhealthy)",
			},
		),
		LastHealthCheck: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "last_health_check_timestamp",
				Help:      "Timestamp of last health check",
			},
		),
	}

	m.ServiceHealthy.Set(1)
	m.LastHealthCheck.SetToCurrentTime()

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration, responseSize int64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordQuery records one analytics query
func (m *Metrics) RecordQuery(endpoint string, rows int, duration time.Duration) {
	m.QueriesTotal.WithLabelValues(endpoint).Inc()
	m.QueryDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	m.FilteredRowCount.WithLabelValues(endpoint).Observe(float64(rows))
}

// RecordExport records an export download
func (m *Metrics) RecordExport(format string) {
	m.ExportsTotal.WithLabelValues(format).Inc()
}

// RecordCacheLookup records a report cache hit or miss
func (m *Metrics) RecordCacheLookup(hit bool) {
	if hit {
		m.ReportCacheHits.Inc()
	} else {
		m.ReportCacheMisses.Inc()
	}
}

// SetRecordsLoaded records table sizes after the initial load
func (m *Metrics) SetRecordsLoaded(table string, count int) {
	m.RecordsLoaded.WithLabelValues(table).Set(float64(count))
}

// UpdateServiceHealth updates service health status
func (m *Metrics) UpdateServiceHealth(healthy bool) {
	if healthy {
		m.ServiceHealthy.Set(1)
	} else {
		m.ServiceHealthy.Set(0)
	}
	m.LastHealthCheck.SetToCurrentTime()
}

// statusCode converts HTTP status code to string category
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

// StartUptimeTracking starts tracking service uptime
func (m *Metrics) StartUptimeTracking(startTime time.Time) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			uptime := time.Since(startTime).Seconds()
			m.ServiceUptime.Set(uptime)
		}
	}()
}
