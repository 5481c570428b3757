package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "invoicely/internal/core/context"
	"invoicely/internal/core/id"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"

	KeyRequestID = "request_id"
	KeyTraceID   = "trace_id"
)

// Trace reads or generates request and trace ids, puts them on the request
// context and echoes them in the response headers. The request id is
// forwarded to the backend by the API client.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = id.New().String()
		}
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = requestID
		}

		ctx := appctx.WithTrace(c.Request.Context(), &appctx.TraceContext{
			TraceID:   traceID,
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set(KeyTraceID, traceID)
		c.Set(KeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
