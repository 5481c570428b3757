package handlers

import (
	"github.com/gin-gonic/gin"

	"invoicely/internal/domain/tax"
	"invoicely/internal/infrastructure/http/v1/dto"
)

// TaxHandler serves the live totals shown while a purchase is edited.
type TaxHandler struct {
	*BaseHandler
}

func NewTaxHandler(base *BaseHandler) *TaxHandler {
	return &TaxHandler{BaseHandler: base}
}

// Calculate handles POST /tax/calculate. Malformed numbers count as zero, so
// a half-filled form still gets totals.
func (h *TaxHandler) Calculate(c *gin.Context) {
	var req tax.DocumentInput
	if !h.BindJSON(c, &req) {
		return
	}
	h.OK(c, dto.FromTotals(tax.Calculate(req.Document())))
}
