package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(aiCallsLatencyMs, authAttemptsTotal)
}

var (
	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devserver_ai_calls_latency_ms",
			Help:    "Answerer latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"provider", "success"},
	)

	authAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devserver_auth_attempts_total",
			Help: "Signup/login attempts by result.",
		},
		[]string{"op", "result"},
	)
)

func ObserveAnswer(provider string, latencyMs int64, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), strconv.FormatBool(success)).Observe(float64(latencyMs))
}

func IncAuthAttempt(op, result string) {
	authAttemptsTotal.WithLabelValues(norm(op), norm(result)).Inc()
}
