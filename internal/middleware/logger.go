package middleware

import (
	"time"

	"github.com/apex/log"
	"github.com/labstack/echo/v4"
)

// RequestLogger writes one http.request entry per request through apex/log.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the HTTP error handler write the response so the status is final
				c.Error(err)
			}

			req := c.Request()
			entry := log.WithFields(log.Fields{
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"remote_ip":  c.RealIP(),
			})
			switch {
			case err != nil:
				entry.WithError(err).Error("http.request")
			case c.Response().Status >= 500:
				entry.Error("http.request")
			default:
				entry.Info("http.request")
			}
			return nil
		}
	}
}
