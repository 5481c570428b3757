package purchase

import (
	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
)

// ItemPayload is one line as the backend stores it, with its computed amounts.
type ItemPayload struct {
	Product       id.Ref       `json:"product,omitempty"`
	Description   string       `json:"description"`
	HSNCode       string       `json:"hsn_code"`
	Quantity      types.Money  `json:"quantity"`
	UnitName      string       `json:"unit"`
	Rate          types.Amount `json:"rate"`
	GSTRate       types.Money  `json:"gst_rate"`
	TaxableAmount types.Amount `json:"taxable_amount"`
	GSTAmount     types.Amount `json:"gst_amount"`
	TotalAmount   types.Amount `json:"total_amount"`
}

// Payload is the create/update body. The backend persists these totals as sent
// and does not recompute them.
type Payload struct {
	Supplier       id.Ref        `json:"supplier"`
	PurchaseDate   string        `json:"purchase_date"`
	InvoiceNumber  string        `json:"invoice_number,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	IsInterstate   bool          `json:"is_interstate"`
	Items          []ItemPayload `json:"items"`
	Subtotal       types.Amount  `json:"subtotal"`
	TaxAmount      types.Amount  `json:"tax_amount"`
	CGSTAmount     types.Amount  `json:"cgst_amount"`
	SGSTAmount     types.Amount  `json:"sgst_amount"`
	IGSTAmount     types.Amount  `json:"igst_amount"`
	OtherCharges   types.Amount  `json:"other_charges"`
	DiscountAmount types.Amount  `json:"discount_amount"`
	TotalAmount    types.Amount  `json:"total_amount"`
}

// Payload builds the submit body with totals rounded to 2 decimals.
func (d Draft) Payload() Payload {
	totals := d.Totals().Rounded()

	items := make([]ItemPayload, len(d.Items))
	for i, item := range d.Items {
		it := totals.Items[i]
		items[i] = ItemPayload{
			Product:       item.ProductRef,
			Description:   item.Description,
			HSNCode:       item.HSNCode,
			Quantity:      item.Quantity,
			UnitName:      item.UnitName,
			Rate:          types.NewAmount(item.Rate),
			GSTRate:       item.GSTRatePercent,
			TaxableAmount: types.NewAmount(it.TaxableAmount),
			GSTAmount:     types.NewAmount(it.GSTAmount),
			TotalAmount:   types.NewAmount(it.TotalAmount),
		}
	}

	return Payload{
		Supplier:       d.SupplierID,
		PurchaseDate:   d.PurchaseDate,
		InvoiceNumber:  d.InvoiceNumber,
		Notes:          d.Notes,
		IsInterstate:   d.IsInterstate,
		Items:          items,
		Subtotal:       types.NewAmount(totals.Subtotal),
		TaxAmount:      types.NewAmount(totals.TotalGST),
		CGSTAmount:     types.NewAmount(totals.CGST),
		SGSTAmount:     types.NewAmount(totals.SGST),
		IGSTAmount:     types.NewAmount(totals.IGST),
		OtherCharges:   types.NewAmount(totals.OtherCharges),
		DiscountAmount: types.NewAmount(totals.Discount),
		TotalAmount:    types.NewAmount(totals.Total),
	}
}
