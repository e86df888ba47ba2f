package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// Readiness recompute outcomes.
const (
	OutcomeScored   = "scored"
	OutcomeFailed   = "calculation_failed"
	OutcomeConflict = "conflict"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	cacheLatency      prometheus.Observer
	cacheWrite        prometheus.Observer
	cacheHitRatio     prometheus.Gauge
	cacheHits         prometheus.Counter
	cacheMisses       prometheus.Counter
	readinessTotal    *prometheus.CounterVec
	readinessDuration prometheus.Observer
	readinessScore    prometheus.Observer
	matchingDuration  *prometheus.HistogramVec
	matchingEligible  prometheus.Observer
	queueDepth        prometheus.Gauge

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	readinessCount       uint64
	conflictCount        uint64
	matchingRunCount     uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	readinessTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "readiness_recomputations_total",
		Help: "Readiness recomputations by outcome",
	}, []string{"outcome"})

	readinessDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "readiness_recompute_seconds",
		Help:    "Duration of load, score and save cycles",
		Buckets: prometheus.DefBuckets,
	})

	readinessScore := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "readiness_score",
		Help:    "Distribution of computed readiness scores",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	matchingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matching_run_seconds",
		Help:    "Duration of job matching runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	matchingEligible := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "matching_eligible_students",
		Help:    "Eligible students per matching run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "matching_queue_pending",
		Help: "Matching runs queued or in flight",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		readinessTotal, readinessDuration, readinessScore, matchingDuration, matchingEligible, queueDepth, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:          registry,
		handler:           handler,
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		cacheLatency:      cacheLatency,
		cacheWrite:        cacheWrite,
		cacheHitRatio:     cacheHitRatio,
		cacheHits:         cacheHits,
		cacheMisses:       cacheMisses,
		readinessTotal:    readinessTotal,
		readinessDuration: readinessDuration,
		readinessScore:    readinessScore,
		matchingDuration:  matchingDuration,
		matchingEligible:  matchingEligible,
		queueDepth:        queueDepth,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil || m.cacheWrite == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveReadiness records one recompute attempt. score is ignored unless the outcome is OutcomeScored.
func (m *MetricsService) ObserveReadiness(outcome string, score int, duration time.Duration) {
	if m == nil {
		return
	}
	m.readinessTotal.WithLabelValues(outcome).Inc()
	m.readinessDuration.Observe(duration.Seconds())
	switch outcome {
	case OutcomeScored:
		m.readinessScore.Observe(float64(score))
		atomic.AddUint64(&m.readinessCount, 1)
	case OutcomeConflict:
		atomic.AddUint64(&m.conflictCount, 1)
	}
}

// ObserveMatchingRun records a finished matching run.
func (m *MetricsService) ObserveMatchingRun(err error, eligible int, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	} else {
		m.matchingEligible.Observe(float64(eligible))
	}
	m.matchingDuration.WithLabelValues(status).Observe(duration.Seconds())
	atomic.AddUint64(&m.matchingRunCount, 1)
}

// SetQueueDepth publishes the number of pending matching runs.
func (m *MetricsService) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}

// Snapshot returns aggregated metrics suitable for the metrics summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	totalLookups := hits + misses
	if totalLookups > 0 {
		cacheRatio = float64(hits) / float64(totalLookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ReadinessRecomputes:      atomic.LoadUint64(&m.readinessCount),
		ReadinessConflicts:       atomic.LoadUint64(&m.conflictCount),
		MatchingRuns:             atomic.LoadUint64(&m.matchingRunCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
