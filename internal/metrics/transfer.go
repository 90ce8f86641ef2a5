package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Async lookups by kind (allowance, wrapped_asset, balance, quote) and outcome
	transferLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xpay",
			Subsystem: "transfer",
			Name:      "lookups_total",
			Help:      "Total number of asynchronous lookups issued by the transfer session",
		},
		[]string{"kind", "chain", "status"}, // success, error, memoized
	)

	// Completions dropped because a newer request superseded them
	transferStaleDiscardsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xpay",
			Subsystem: "transfer",
			Name:      "stale_discards_total",
			Help:      "Total number of async completions discarded as stale",
		},
		[]string{"kind"},
	)

	transferApprovalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xpay",
			Subsystem: "transfer",
			Name:      "approvals_total",
			Help:      "Total number of token approvals",
		},
		[]string{"chain", "mode", "status"}, // exact/unlimited, success/error
	)

	transferQuoteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xpay",
			Subsystem: "transfer",
			Name:      "quote_duration_seconds",
			Help:      "Price quote latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	transferSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xpay",
			Subsystem: "transfer",
			Name:      "submissions_total",
			Help:      "Total number of bridge transfer submissions",
		},
		[]string{"source_chain", "target_chain", "status"},
	)

	// Time from submission to observed attestation
	transferSettlementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "xpay",
			Subsystem: "transfer",
			Name:      "settlement_duration_seconds",
			Help:      "Time between transfer submission and signed VAA availability",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1200, 1800},
		},
	)
)

// TransferMetrics provides methods to update transfer-related metrics. A nil
// *TransferMetrics is valid and records into the same collectors.
type TransferMetrics struct{}

func NewTransferMetrics() *TransferMetrics {
	return &TransferMetrics{}
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

func (tm *TransferMetrics) RecordLookup(kind, chain string, success bool) {
	transferLookupsTotal.WithLabelValues(kind, chain, status(success)).Inc()
}

func (tm *TransferMetrics) RecordMemoHit(kind, chain string) {
	transferLookupsTotal.WithLabelValues(kind, chain, "memoized").Inc()
}

func (tm *TransferMetrics) RecordStaleDiscard(kind string) {
	transferStaleDiscardsTotal.WithLabelValues(kind).Inc()
}

func (tm *TransferMetrics) RecordApproval(chain string, unlimited, success bool) {
	mode := "exact"
	if unlimited {
		mode = "unlimited"
	}
	transferApprovalsTotal.WithLabelValues(chain, mode, status(success)).Inc()
}

func (tm *TransferMetrics) RecordQuote(success bool, duration time.Duration) {
	transferQuoteDuration.WithLabelValues(status(success)).Observe(duration.Seconds())
}

func (tm *TransferMetrics) RecordSubmission(sourceChain, targetChain string, success bool) {
	transferSubmissionsTotal.WithLabelValues(sourceChain, targetChain, status(success)).Inc()
}

func (tm *TransferMetrics) RecordSettlement(duration time.Duration) {
	transferSettlementDuration.Observe(duration.Seconds())
}
