package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// observe logs every request and records its metrics. It runs outermost, so
// errors are rendered here to get the final status.
func (s *Server) observe(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.Metrics.inFlight.Inc()
		defer s.Metrics.inFlight.Dec()

		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}
		latency := time.Since(start)

		req := c.Request()
		status := c.Response().Status
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		s.Metrics.Record(req.Method, route, status, latency)

		fields := []interface{}{
			"method", req.Method,
			"path", req.URL.Path,
			"route", route,
			"status", status,
			"latency", latency,
			"request_id", requestID(c),
		}
		switch {
		case status >= http.StatusInternalServerError:
			s.Logger.Errorw("request", fields...)
		case status >= http.StatusBadRequest:
			s.Logger.Warnw("request", fields...)
		default:
			s.Logger.Infow("request", fields...)
		}
		return nil
	}
}
