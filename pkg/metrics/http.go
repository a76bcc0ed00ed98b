package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "satispay",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Satispay API request latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "status_code"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "satispay",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of Satispay API requests",
		},
		[]string{"method", "status_code"},
	)
)

func init() {
	Registry.MustRegister(RequestDuration, RequestsTotal)
}
