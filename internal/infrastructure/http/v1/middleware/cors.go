package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the browser app's origins. "*" allows any origin without
// credentials. An empty list returns nil and no CORS headers are sent.
func CORS(origins []string) gin.HandlerFunc {
	var allowed []string
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		return nil
	}

	cfg := cors.DefaultConfig()
	if len(allowed) == 1 && allowed[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowed
		cfg.AllowCredentials = true
	}
	cfg.AddAllowHeaders("Authorization", HeaderRequestID, HeaderTraceID)
	cfg.AddExposeHeaders("Content-Disposition", HeaderRequestID, HeaderTraceID)
	return cors.New(cfg)
}
