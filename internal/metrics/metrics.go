package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	logx "github.com/malaysia-ai/concierge-server/pkg/logger"
)

// Concierge server metrics - using explicit registration
var (
	// HTTP request counters
	RequestsTotal *prometheus.CounterVec

	// Chat pipeline duration histogram
	ChatDuration *prometheus.HistogramVec

	// Image search provider counters
	ImageSearchTotal *prometheus.CounterVec

	// Curated fallback usage counter
	ImageFallbackTotal prometheus.Counter

	// Circuit breaker state gauge
	CircuitBreakerState *prometheus.GaugeVec

	// External provider latency
	ExternalProviderLatency *prometheus.HistogramVec
)

// init creates and registers all metrics with the default registry
func init() {
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ChatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat pipeline duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"mode"},
	)

	ImageSearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "images",
			Name:      "search_total",
			Help:      "Total image search requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	ImageFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "images",
			Name:      "fallback_total",
			Help:      "Total image searches served from the curated fallback set",
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "concierge",
			Subsystem: "images",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 0.5=half-open, 1=open)",
		},
		[]string{"provider"},
	)

	ExternalProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "images",
			Name:      "external_provider_latency_seconds",
			Help:      "External provider response time in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(ChatDuration)
	prometheus.MustRegister(ImageSearchTotal)
	prometheus.MustRegister(ImageFallbackTotal)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(ExternalProviderLatency)
	logx.Info().Msg("Concierge metrics registered with Prometheus")
}

// RecordRequest records an HTTP request
func RecordRequest(method, path, status string) {
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordChatDuration records a chat pipeline execution
func RecordChatDuration(mode string, durationSec float64) {
	ChatDuration.WithLabelValues(mode).Observe(durationSec)
}

// RecordImageSearch records an image search attempt
func RecordImageSearch(provider, status string) {
	if provider == "" {
		provider = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	ImageSearchTotal.WithLabelValues(provider, status).Inc()
}

// RecordImageFallback records an image search served from curated images
func RecordImageFallback() {
	ImageFallbackTotal.Inc()
}

// SetCircuitBreakerState sets the circuit breaker state
func SetCircuitBreakerState(provider string, state string) {
	var val float64
	switch state {
	case "closed":
		val = 0.0
	case "half-open":
		val = 0.5
	case "open":
		val = 1.0
	}
	CircuitBreakerState.WithLabelValues(provider).Set(val)
}

// RecordExternalProviderLatency records external provider response time
func RecordExternalProviderLatency(provider string, durationSec float64) {
	ExternalProviderLatency.WithLabelValues(provider).Observe(durationSec)
}
