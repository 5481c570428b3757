package handlers

import "github.com/gin-gonic/gin"

// SyncHandler reports the backend's data-sync status.
type SyncHandler struct {
	*BaseHandler
	status StatusSource
}

func NewSyncHandler(base *BaseHandler, status StatusSource) *SyncHandler {
	return &SyncHandler{BaseHandler: base, status: status}
}

// Status handles GET /sync/status. It answers from the background poller and
// never calls the backend itself.
func (h *SyncHandler) Status(c *gin.Context) {
	h.OK(c, h.status.Latest())
}
