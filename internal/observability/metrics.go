package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	registry            *prometheus.Registry
	requestCount        *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	errorCount          *prometheus.CounterVec
	serviceRequests     prometheus.Counter
	ratings             prometheus.Counter
	moderationChanges   *prometheus.CounterVec
	notificationFailure *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP errors by route, method and error code.",
		}, []string{"path", "method", "code"}),
		serviceRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_requests_created_total",
			Help:      "Service requests booked by customers.",
		}),
		ratings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_created_total",
			Help:      "Ratings submitted by customers.",
		}),
		moderationChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_transitions_total",
			Help:      "Catalog entries moved out of pending, by resulting status.",
		}, []string{"status"}),
		notificationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be handed to the transport.",
		}, []string{"kind"}),
	}
	reg.MustRegister(
		prometheus.NewGoCollector(),
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.serviceRequests,
		m.ratings,
		m.moderationChanges,
		m.notificationFailure,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordServiceRequest counts a booked service request.
func (m *Metrics) RecordServiceRequest() {
	if m == nil {
		return
	}
	m.serviceRequests.Inc()
}

// RecordRating counts a submitted rating.
func (m *Metrics) RecordRating() {
	if m == nil {
		return
	}
	m.ratings.Inc()
}

// RecordModeration counts entries moved to status.
func (m *Metrics) RecordModeration(status string, changed int64) {
	if m == nil || changed <= 0 {
		return
	}
	m.moderationChanges.WithLabelValues(status).Add(float64(changed))
}

// RecordNotificationFailure counts a notification that was dropped.
func (m *Metrics) RecordNotificationFailure(kind string) {
	if m == nil {
		return
	}
	m.notificationFailure.WithLabelValues(kind).Inc()
}
