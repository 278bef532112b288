package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/Harshitk-cp/agentlink/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Directory call metrics
	DirectoryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentlink_directory_calls_total",
			Help: "Total number of AgentLink directory calls",
		},
		[]string{"operation", "outcome"}, // outcome: ok|transport|protocol|auth|not_found|invalid|unknown
	)

	DirectoryLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentlink_directory_latency_seconds",
			Help:    "AgentLink directory call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 30},
		},
		[]string{"operation"},
	)

	DiscoveredAgents = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentlink_discovered_agents",
			Help:    "Number of agents returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
		[]string{"operation"},
	)

	// Gateway metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentlink_gateway_requests_total",
			Help: "Total number of gateway HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentlink_gateway_request_duration_seconds",
			Help:    "Gateway HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

var initOnce sync.Once

// Init registers all metrics with Prometheus. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(DirectoryCalls)
		prometheus.MustRegister(DirectoryLatency)
		prometheus.MustRegister(DiscoveredAgents)
		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordDirectoryCall records one directory round trip and its outcome kind.
func RecordDirectoryCall(operation string, duration time.Duration, err error) {
	DirectoryCalls.WithLabelValues(operation, domain.Kind(err)).Inc()
	DirectoryLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDiscovered records how many agents a search produced.
func RecordDiscovered(operation string, n int) {
	DiscoveredAgents.WithLabelValues(operation).Observe(float64(n))
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
