package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tsawler/textmetrics/internal/observability"
)

// MetricsMiddleware records request metrics for the API.
func MetricsMiddleware(metrics *observability.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			code := strconv.Itoa(status)
			metrics.HTTPRequestTotal.WithLabelValues(route, code).Inc()
			metrics.HTTPRequestDurationSeconds.WithLabelValues(route, code).Observe(time.Since(start).Seconds())

			if status < 200 || status >= 300 {
				metrics.HTTPRequestNon2xxTotal.WithLabelValues(route, code).Inc()
			}

			return err
		}
	}
}
