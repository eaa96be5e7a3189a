package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(backendRequestsTotal, backendLatencyMs)
}

var (
	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textbook_backend_requests_total",
			Help: "Backend calls by endpoint and status code (0 = transport failure).",
		},
		[]string{"endpoint", "code"},
	)

	backendLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "textbook_backend_latency_ms",
			Help:    "Backend call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"endpoint"},
	)
)

// ObserveBackendCall records one request. code is 0 when no response arrived.
func ObserveBackendCall(endpoint string, code int, latencyMs int64) {
	backendRequestsTotal.WithLabelValues(norm(endpoint), strconv.Itoa(code)).Inc()
	backendLatencyMs.WithLabelValues(norm(endpoint)).Observe(float64(latencyMs))
}
