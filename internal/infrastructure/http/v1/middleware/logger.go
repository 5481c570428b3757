package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"invoicely/pkg/logger"
)

// Logger puts log on the request context for the domain services and writes
// one entry per request. Client errors log at warn level and server errors at
// error level.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"bytes", c.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if errs := c.Errors.String(); errs != "" {
			fields = append(fields, "error", errs)
		}

		l := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			l.Errorw("http request", fields...)
		case status >= 400:
			l.Warnw("http request", fields...)
		default:
			l.Infow("http request", fields...)
		}
	}
}
