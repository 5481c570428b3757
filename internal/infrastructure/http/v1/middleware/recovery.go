// Package middleware provides gin middleware for the gateway.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"invoicely/internal/core/apperror"
	"invoicely/pkg/logger"
)

// Recovery turns a handler panic into a 500 response. The stack is logged and
// never sent to the browser.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"method", c.Request.Method,
					"path", c.FullPath(),
					"error", rec,
					"stack", string(debug.Stack()),
				)

				_ = c.Error(
					apperror.NewInternal(fmt.Errorf("panic: %v", rec)).
						WithDetail("request_id", c.GetString(KeyRequestID)),
				)
				c.Abort()
			}
		}()
		c.Next()
	}
}
