package telemetry

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type AppMetrics struct {
	remoteDuration    *prometheus.HistogramVec
	remoteTotal       *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	activeConnections prometheus.Gauge
	memoryUsage       prometheus.Gauge
	goroutines        prometheus.Gauge
	storeOperations   *prometheus.CounterVec
	cachedTodos       prometheus.Gauge
	throttleHits      *prometheus.CounterVec
	throttleAllowed   *prometheus.CounterVec
}

func NewAppMetrics(registry prometheus.Registerer) *AppMetrics {
	metrics := &AppMetrics{
		remoteDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "client_remote_call_duration_seconds",
				Help:    "Duration of calls to the remote services in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "method", "path", "status"},
		),
		remoteTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_remote_calls_total",
				Help: "Total number of calls to the remote services",
			},
			[]string{"service", "method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests served by the devserver in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests served by the devserver",
			},
			[]string{"method", "path", "status"},
		),
		activeConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
		memoryUsage: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "memory_usage_bytes",
				Help: "Memory usage in bytes",
			},
		),
		goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "goroutines_total",
				Help: "Number of goroutines",
			},
		),
		storeOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_operations_total",
				Help: "Total number of state container operations",
			},
			[]string{"store", "operation", "result"},
		),
		cachedTodos: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "store_cached_todos",
				Help: "Number of todos held by the todo state container",
			},
		),
		throttleHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_throttle_hits_total",
				Help: "Total number of requests refused by the local throttle",
			},
			[]string{"path"},
		),
		throttleAllowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_throttle_allowed_total",
				Help: "Total number of requests allowed by the local throttle",
			},
			[]string{"path"},
		),
	}

	registry.MustRegister(
		metrics.remoteDuration,
		metrics.remoteTotal,
		metrics.requestDuration,
		metrics.requestTotal,
		metrics.activeConnections,
		metrics.memoryUsage,
		metrics.goroutines,
		metrics.storeOperations,
		metrics.cachedTodos,
		metrics.throttleHits,
		metrics.throttleAllowed,
	)

	return metrics
}

func (m *AppMetrics) RecordRemoteCall(ctx context.Context, service, method, path string, status int, duration time.Duration) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "transport_error"
	}

	m.remoteDuration.WithLabelValues(service, method, path, label).Observe(duration.Seconds())
	m.remoteTotal.WithLabelValues(service, method, path, label).Inc()
}

func (m *AppMetrics) RecordRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	label := strconv.Itoa(status)

	m.requestDuration.WithLabelValues(method, path, label).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, label).Inc()
}

func (m *AppMetrics) IncrementActiveConnections(ctx context.Context) {
	m.activeConnections.Inc()
}

func (m *AppMetrics) DecrementActiveConnections(ctx context.Context) {
	m.activeConnections.Dec()
}

func (m *AppMetrics) RecordStoreOperation(ctx context.Context, store, operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}

	m.storeOperations.WithLabelValues(store, operation, result).Inc()
}

func (m *AppMetrics) SetCachedTodos(ctx context.Context, size int) {
	m.cachedTodos.Set(float64(size))
}

func (m *AppMetrics) RecordThrottleHit(ctx context.Context, path string) {
	m.throttleHits.WithLabelValues(path).Inc()
}

func (m *AppMetrics) RecordThrottleAllowed(ctx context.Context, path string) {
	m.throttleAllowed.WithLabelValues(path).Inc()
}

func (m *AppMetrics) StartSystemMetrics(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				var memStats runtime.MemStats
				runtime.ReadMemStats(&memStats)
				m.memoryUsage.Set(float64(memStats.Alloc))

				m.goroutines.Set(float64(runtime.NumGoroutine()))

			case <-ctx.Done():
				return
			}
		}
	}()
}
