package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shortscan",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of runs endpoints",
			Buckets:   []float64{0.005, 0.05, 0.5, 5, 30, 120, 600},
		},
		[]string{"endpoint"},
	)

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shortscan",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by runs endpoint",
		},
		[]string{"endpoint"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(APILatency, APIErrors)
	})
}
