package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicely/internal/infrastructure/syncstatus"
)

// StatusSource exposes the latest backend sync reading.
type StatusSource interface {
	Latest() syncstatus.Status
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	status  StatusSource
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(status StatusSource, version string) *HealthHandler {
	return &HealthHandler{status: status, version: version}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready handles GET /health/ready. The gateway is ready once the backend has
// answered the latest sync poll.
func (h *HealthHandler) Ready(c *gin.Context) {
	s := h.status.Latest()
	if s.CheckedAt.IsZero() || s.Stale {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{"backend": "unreachable"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{"backend": "reachable"},
	})
}
