package handlers

import (
	"github.com/gin-gonic/gin"

	"invoicely/internal/domain/stock"
	"invoicely/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles products, movement history and stock adjustments.
type InventoryHandler struct {
	*BaseHandler
	service *stock.Service
}

func NewInventoryHandler(base *BaseHandler, service *stock.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// ListProducts handles GET /products.
func (h *InventoryHandler) ListProducts(c *gin.Context) {
	h.OK(c, dto.FromProducts(h.service.ListProducts(c.Request.Context())))
}

// Movements handles GET /products/:id/movements.
func (h *InventoryHandler) Movements(c *gin.Context) {
	productID, ok := h.RefParam(c, "id")
	if !ok {
		return
	}
	h.OK(c, h.service.History(c.Request.Context(), productID))
}

// PreviewAdjustment handles POST /products/:id/adjust-stock/preview.
func (h *InventoryHandler) PreviewAdjustment(c *gin.Context) {
	req, ok := h.bindAdjustment(c)
	if !ok {
		return
	}
	res, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAdjustment(res))
}

// AdjustStock handles POST /products/:id/adjust-stock.
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	req, ok := h.bindAdjustment(c)
	if !ok {
		return
	}
	res, err := h.service.Adjust(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromAdjustment(res))
}

func (h *InventoryHandler) bindAdjustment(c *gin.Context) (stock.AdjustmentRequest, bool) {
	productID, ok := h.RefParam(c, "id")
	if !ok {
		return stock.AdjustmentRequest{}, false
	}
	var body dto.AdjustStockRequest
	if !h.BindJSON(c, &body) {
		return stock.AdjustmentRequest{}, false
	}
	return body.ToDomain(productID), true
}
