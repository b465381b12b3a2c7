package middleware

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    httpRequestsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "recipe_api_http_requests_total",
            Help: "Total number of HTTP requests",
        },
        []string{"method", "path", "status"},
    )

    httpRequestDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "recipe_api_http_request_duration_seconds",
            Help:    "HTTP request latency in seconds",
            Buckets: prometheus.DefBuckets,
        },
        []string{"method", "path"},
    )

    httpRequestsInFlight = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "recipe_api_http_requests_in_flight",
            Help: "Current number of HTTP requests being processed",
        },
    )

    rateLimitRejects = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "recipe_api_rate_limit_rejects_total",
            Help: "Total number of requests rejected due to rate limiting",
        },
    )
)

// Metrics records request count, latency and in-flight requests.  The path
// label is the route template (/v1/recipes/:id/) rather than the raw URL.
func Metrics() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            httpRequestsInFlight.Inc()
            defer httpRequestsInFlight.Dec()

            err := next(c)

            path := c.Path()
            if path == "" {
                path = "unmatched"
            }
            method := c.Request().Method
            status := strconv.Itoa(responseStatus(c, err))

            httpRequestsTotal.WithLabelValues(method, path, status).Inc()
            httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
            return err
        }
    }
}

// responseStatus is the status echo will send once err is handled.
func responseStatus(c echo.Context, err error) int {
    if err == nil || c.Response().Committed {
        return c.Response().Status
    }
    var he *echo.HTTPError
    if errors.As(err, &he) {
        return he.Code
    }
    return http.StatusInternalServerError
}
