package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetched      *prometheus.CounterVec
	skipped      *prometheus.CounterVec
	cleanRows    prometheus.Gauge
	foldAccuracy *prometheus.GaugeVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder registered on reg
// (the default registerer when nil).
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortscan_price_records_fetched_total",
				Help: "Total number of daily bars fetched per symbol",
			},
			[]string{"symbol"},
		),
		skipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortscan_symbols_skipped_total",
				Help: "Symbols skipped for lack of data",
			},
			[]string{"symbol"},
		),
		cleanRows: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "shortscan_clean_rows",
				Help: "Clean rows of the last run",
			},
		),
		foldAccuracy: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shortscan_fold_accuracy",
				Help: "Test accuracy per walk-forward fold of the last run",
			},
			[]string{"fold"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortscan_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shortscan_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),
	}
}

// RecordFetched counts fetched records for a symbol.
func (r *Recorder) RecordFetched(symbol string, records int) {
	r.fetched.WithLabelValues(symbol).Add(float64(records))
}

func (r *Recorder) RecordSkipped(symbol string) {
	r.skipped.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordCleanRows(n int) {
	r.cleanRows.Set(float64(n))
}

func (r *Recorder) RecordFoldAccuracy(fold int, accuracy float64) {
	r.foldAccuracy.WithLabelValues(strconv.Itoa(fold)).Set(accuracy)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
