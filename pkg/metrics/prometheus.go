package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	scanTasks   *prometheus.CounterVec
	fetchErrors *prometheus.CounterVec
	lastScore   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		scanTasks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "setpulse_scan_tasks_total",
				Help: "Total number of scan tasks executed",
			},
			[]string{"mode", "outcome"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "setpulse_fetch_errors_total",
				Help: "Total number of vendor fetch errors",
			},
			[]string{"type"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "setpulse_last_signal_score",
				Help: "Last computed signal score for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "setpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordScanTask records one scan task completion.
func (r *Recorder) RecordScanTask(mode string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "skipped"
	}
	r.scanTasks.WithLabelValues(mode, outcome).Inc()
}

// RecordFetchError records a vendor fetch failure.
func (r *Recorder) RecordFetchError(kind string) {
	r.fetchErrors.WithLabelValues(kind).Inc()
}

// RecordScore records the latest signal score for a symbol.
func (r *Recorder) RecordScore(symbol string, score float64) {
	r.lastScore.WithLabelValues(symbol).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
