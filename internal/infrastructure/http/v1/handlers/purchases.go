package handlers

import (
	"github.com/gin-gonic/gin"

	"invoicely/internal/domain/purchase"
	"invoicely/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler handles suppliers and purchase documents.
type PurchaseHandler struct {
	*BaseHandler
	service *purchase.Service
}

func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// ListSuppliers handles GET /suppliers.
func (h *PurchaseHandler) ListSuppliers(c *gin.Context) {
	h.OK(c, dto.NewList(h.service.ListSuppliers(c.Request.Context())))
}

// List handles GET /purchases.
func (h *PurchaseHandler) List(c *gin.Context) {
	purchases, err := h.service.ListPurchases(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewList(purchases))
}

// Create handles POST /purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req purchase.DraftInput
	if !h.BindJSON(c, &req) {
		return
	}
	draft := req.Draft()
	saved, err := h.service.Submit(c.Request.Context(), draft)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.PurchaseSavedResponse{Purchase: saved, Totals: dto.FromTotals(draft.Totals())})
}

// Update handles PUT /purchases/:id.
func (h *PurchaseHandler) Update(c *gin.Context) {
	purchaseID, ok := h.RefParam(c, "id")
	if !ok {
		return
	}
	var req purchase.DraftInput
	if !h.BindJSON(c, &req) {
		return
	}
	draft := req.Draft()
	draft.ID = purchaseID
	saved, err := h.service.Submit(c.Request.Context(), draft)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.PurchaseSavedResponse{Purchase: saved, Totals: dto.FromTotals(draft.Totals())})
}
