package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	webhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_webhooks_received_total",
			Help: "Inbound platform webhooks received",
		},
		[]string{"platform", "entity", "action"},
	)

	webhooksSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_webhooks_suppressed_total",
			Help: "Inbound webhooks dropped as echoes of our own writes",
		},
		[]string{"platform", "entity", "action"},
	)

	webhooksApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_webhooks_applied_total",
			Help: "Inbound webhooks that changed local state",
		},
		[]string{"platform", "entity", "action"},
	)

	syncPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_pushes_total",
			Help: "Outbound sync jobs executed",
		},
		[]string{"platform", "entity", "action", "result"},
	)

	leasesReaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sync_leases_reaped_total",
			Help: "Stale sync leases removed by the reaper",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}

func RecordWebhookReceived(platform, entity, action string) {
	webhooksReceived.WithLabelValues(platform, entity, action).Inc()
}

func RecordWebhookSuppressed(platform, entity, action string) {
	webhooksSuppressed.WithLabelValues(platform, entity, action).Inc()
}

func RecordWebhookApplied(platform, entity, action string) {
	webhooksApplied.WithLabelValues(platform, entity, action).Inc()
}

func RecordSyncPush(platform, entity, action, result string) {
	syncPushes.WithLabelValues(platform, entity, action, result).Inc()
}

func RecordLeasesReaped(n int) {
	leasesReaped.Add(float64(n))
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
