// Package metrics provides Prometheus metrics for the NODO client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns every Prometheus collector the client records into.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// API Client
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	apiErrors          *prometheus.CounterVec
	apiUploadBytes     prometheus.Counter

	// Controllers
	sessionResolutions *prometheus.CounterVec
	authTransitions    *prometheus.CounterVec
	dashboardLoads     *prometheus.CounterVec
	staleResponses     *prometheus.CounterVec
	authenticated      prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nodo",
		subsystem:        "client",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.apiRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "api_requests_total",
			Help:        "Total number of backend API calls by operation, method and status code",
			ConstLabels: m.constLabels,
		},
		[]string{"operation", "method", "status_code"},
	)

	m.apiRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "api_request_duration_milliseconds",
			Help:        "Backend API call duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"operation", "method"},
	)

	m.apiErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "api_errors_total",
			Help:        "Failed backend API calls by operation and error type",
			ConstLabels: m.constLabels,
		},
		[]string{"operation", "error_type"},
	)

	m.apiUploadBytes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "api_upload_bytes_total",
		Help:        "Bytes sent through the upload endpoint",
		ConstLabels: m.constLabels,
	})

	m.sessionResolutions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "session_resolutions_total",
			Help:        "Identity resolutions by outcome (authenticated, anonymous)",
			ConstLabels: m.constLabels,
		},
		[]string{"outcome"},
	)

	m.authTransitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "auth_transitions_total",
			Help:        "Auth flow mode transitions",
			ConstLabels: m.constLabels,
		},
		[]string{"from", "to"},
	)

	m.dashboardLoads = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "dashboard_loads_total",
			Help:        "Dashboard bundle fetches by role",
			ConstLabels: m.constLabels,
		},
		[]string{"role"},
	)

	m.staleResponses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stale_responses_total",
			Help:        "Responses dropped because a newer request already updated the view",
			ConstLabels: m.constLabels,
		},
		[]string{"view"},
	)

	m.authenticated = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "authenticated",
		Help:        "1 when the current session resolved to a user, 0 otherwise",
		ConstLabels: m.constLabels,
	})
}

// RecordAPIRequest counts one backend call and observes its latency.
func (m *Manager) RecordAPIRequest(operation, method, statusCode string, durationMs float64) {
	m.apiRequests.WithLabelValues(operation, method, statusCode).Inc()
	m.apiRequestDuration.WithLabelValues(operation, method).Observe(durationMs)
}

// RecordAPIError counts a failed backend call.
func (m *Manager) RecordAPIError(operation, errorType string) {
	m.apiErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordUploadBytes adds n to the uploaded bytes counter.
func (m *Manager) RecordUploadBytes(n int64) {
	if n > 0 {
		m.apiUploadBytes.Add(float64(n))
	}
}

// RecordSessionResolution counts an identity resolution and updates the authenticated gauge.
func (m *Manager) RecordSessionResolution(authenticated bool) {
	if authenticated {
		m.sessionResolutions.WithLabelValues("authenticated").Inc()
		m.authenticated.Set(1)
		return
	}
	m.sessionResolutions.WithLabelValues("anonymous").Inc()
	m.authenticated.Set(0)
}

// RecordAuthTransition counts a move between auth flow modes.
func (m *Manager) RecordAuthTransition(from, to string) {
	m.authTransitions.WithLabelValues(from, to).Inc()
}

// RecordDashboardLoad counts a dashboard bundle fetch.
func (m *Manager) RecordDashboardLoad(role string) {
	m.dashboardLoads.WithLabelValues(role).Inc()
}

// RecordStaleResponse counts a dropped out-of-order response.
func (m *Manager) RecordStaleResponse(view string) {
	m.staleResponses.WithLabelValues(view).Inc()
}

// RecordAPIRequest records into the global manager.
func RecordAPIRequest(operation, method, statusCode string, durationMs float64) {
	globalManager.RecordAPIRequest(operation, method, statusCode, durationMs)
}

// RecordAPIError records into the global manager.
func RecordAPIError(operation, errorType string) {
	globalManager.RecordAPIError(operation, errorType)
}

// RecordUploadBytes records into the global manager.
func RecordUploadBytes(n int64) {
	globalManager.RecordUploadBytes(n)
}

// RecordSessionResolution records into the global manager.
func RecordSessionResolution(authenticated bool) {
	globalManager.RecordSessionResolution(authenticated)
}

// RecordAuthTransition records into the global manager.
func RecordAuthTransition(from, to string) {
	globalManager.RecordAuthTransition(from, to)
}

// RecordDashboardLoad records into the global manager.
func RecordDashboardLoad(role string) {
	globalManager.RecordDashboardLoad(role)
}

// RecordStaleResponse records into the global manager.
func RecordStaleResponse(view string) {
	globalManager.RecordStaleResponse(view)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler serves the global registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
