package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xpay",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of API requests by route and session operation",
		},
		[]string{"method", "route", "operation", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "xpay",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency in seconds",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 5, 30},
		},
		[]string{"method", "operation"},
	)

	httpErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "xpay",
			Subsystem: "api",
			Name:      "http_errors_total",
			Help:      "Total number of API requests answered with status >= 500",
		},
		[]string{"method", "route", "status"},
	)
)

// HTTPMiddleware records request counts and latency per route. Health checks
// are not recorded.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "/healthz" {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			method := c.Request().Method
			op := operation(route)
			code := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				code = he.Code
			}
			status := strconv.Itoa(code)

			httpRequestsTotal.WithLabelValues(method, routeLabel(route), op, status).Inc()
			httpRequestDuration.WithLabelValues(method, op).Observe(time.Since(start).Seconds())
			if code >= 500 {
				httpErrorsTotal.WithLabelValues(method, routeLabel(route), status).Inc()
			}
			return err
		}
	}
}

func routeLabel(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}

// operation names the session operation behind a route, e.g. "approve" for
// /v1/sessions/:id/approve. Routes on the session itself map to "session".
func operation(route string) string {
	const prefix = "/v1/sessions/:id"
	switch {
	case route == "":
		return "unknown"
	case !strings.HasPrefix(route, prefix):
		return strings.Trim(strings.ReplaceAll(route, "/", "_"), "_")
	case route == prefix:
		return "session"
	}
	rest := strings.TrimPrefix(route, prefix+"/")
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}
