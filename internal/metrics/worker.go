package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workerAuditRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xpay",
			Subsystem: "worker",
			Name:      "audit_records_total",
			Help:      "Total number of transfer audit records processed",
		},
		[]string{"status"}, // success, error
	)

	workerAuditDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "xpay",
			Subsystem: "worker",
			Name:      "audit_duration_seconds",
			Help:      "Time taken to persist an audit record",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// WorkerMetrics provides methods to update worker-related metrics
type WorkerMetrics struct{}

// NewWorkerMetrics creates a new instance of WorkerMetrics
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{}
}

// RecordAudit records one processed audit task
func (wm *WorkerMetrics) RecordAudit(success bool, duration time.Duration) {
	workerAuditRecordsTotal.WithLabelValues(status(success)).Inc()
	workerAuditDuration.Observe(duration.Seconds())
}
