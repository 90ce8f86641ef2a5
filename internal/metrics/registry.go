package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const (
	ServiceHTTP     = "http"
	ServiceTransfer = "transfer"
	ServiceWorker   = "worker"
)

// RegisterMetrics registers metrics for the specified services
func RegisterMetrics(services []string, logger *logrus.Logger) {
	// Always register Go and process metrics
	registerIfNotExists(collectors.NewGoCollector(), "go_collector", logger)
	registerIfNotExists(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), "process_collector", logger)

	for _, service := range services {
		switch service {
		case ServiceHTTP:
			registerHTTPMetrics(logger)
		case ServiceTransfer:
			registerTransferMetrics(logger)
		case ServiceWorker:
			registerWorkerMetrics(logger)
		default:
			logger.Warnf("Unknown service type for metrics registration: %s", service)
		}
	}
}

// registerIfNotExists registers a collector if it's not already registered
func registerIfNotExists(collector prometheus.Collector, name string, logger *logrus.Logger) {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegErr prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegErr) {
			logger.Debugf("%s already registered", name)
		} else {
			logger.Errorf("Failed to register %s: %v", name, err)
		}
	}
}

func registerHTTPMetrics(logger *logrus.Logger) {
	registerIfNotExists(httpRequestsTotal, "http_requests_total", logger)
	registerIfNotExists(httpRequestDuration, "http_request_duration", logger)
	registerIfNotExists(httpErrorsTotal, "http_errors_total", logger)
}

func registerTransferMetrics(logger *logrus.Logger) {
	registerIfNotExists(transferLookupsTotal, "transfer_lookups_total", logger)
	registerIfNotExists(transferStaleDiscardsTotal, "transfer_stale_discards_total", logger)
	registerIfNotExists(transferApprovalsTotal, "transfer_approvals_total", logger)
	registerIfNotExists(transferQuoteDuration, "transfer_quote_duration", logger)
	registerIfNotExists(transferSubmissionsTotal, "transfer_submissions_total", logger)
	registerIfNotExists(transferSettlementDuration, "transfer_settlement_duration", logger)
}

func registerWorkerMetrics(logger *logrus.Logger) {
	registerIfNotExists(workerAuditRecordsTotal, "worker_audit_records_total", logger)
	registerIfNotExists(workerAuditDuration, "worker_audit_duration", logger)
}
