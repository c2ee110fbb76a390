package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxpulse_http_requests_total",
			Help: "Total HTTP requests by path, method, and status",
		},
		[]string{"path", "method", "status"},
	)
	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fxpulse_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

// Metrics records request counts and durations.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			path := c.Path()
			method := c.Request().Method
			httpRequests.WithLabelValues(path, method, strconv.Itoa(c.Response().Status)).Inc()
			httpDuration.WithLabelValues(path, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
