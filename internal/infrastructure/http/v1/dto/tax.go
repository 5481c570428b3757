package dto

import (
	"invoicely/internal/core/types"
	"invoicely/internal/domain/tax"
)

// ItemTotalsResponse is one line's amounts, formatted for display.
type ItemTotalsResponse struct {
	TaxableAmount string `json:"taxable_amount"`
	GSTAmount     string `json:"gst_amount"`
	TotalAmount   string `json:"total_amount"`
}

// TotalsResponse is a document's amounts, formatted for display.
type TotalsResponse struct {
	Items        []ItemTotalsResponse `json:"items"`
	Subtotal     string               `json:"subtotal"`
	TotalGST     string               `json:"total_gst"`
	CGST         string               `json:"cgst"`
	SGST         string               `json:"sgst"`
	IGST         string               `json:"igst"`
	OtherCharges string               `json:"other_charges"`
	Discount     string               `json:"discount"`
	Total        string               `json:"total"`
}

// FromTotals formats full-precision totals with 2 decimals.
func FromTotals(t tax.DocumentTotals) TotalsResponse {
	items := make([]ItemTotalsResponse, len(t.Items))
	for i, it := range t.Items {
		items[i] = ItemTotalsResponse{
			TaxableAmount: types.Format2(it.TaxableAmount),
			GSTAmount:     types.Format2(it.GSTAmount),
			TotalAmount:   types.Format2(it.TotalAmount),
		}
	}
	return TotalsResponse{
		Items:        items,
		Subtotal:     types.Format2(t.Subtotal),
		TotalGST:     types.Format2(t.TotalGST),
		CGST:         types.Format2(t.CGST),
		SGST:         types.Format2(t.SGST),
		IGST:         types.Format2(t.IGST),
		OtherCharges: types.Format2(t.OtherCharges),
		Discount:     types.Format2(t.Discount),
		Total:        types.Format2(t.Total),
	}
}
