package metrics

// Package metrics provides Prometheus metrics collection for xPay services.
//
// This package includes:
// - HTTP request metrics (count, latency, errors)
// - Transfer orchestration metrics (lookups, allowance, quotes, submissions)
// - Audit worker metrics
// - Metrics HTTP server on configurable port
//
// Usage:
//   import "github.com/vultisig/xpay/internal/metrics"
//
//   metricsServer := metrics.StartMetricsServer(cfg.Metrics, []string{metrics.ServiceHTTP, metrics.ServiceTransfer}, logger)
//   defer metricsServer.Stop(context.Background())
//
//   e.Use(metrics.HTTPMiddleware())
