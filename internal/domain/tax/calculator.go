// Package tax computes GST line and document totals for purchase documents.
//
// Every function here is pure: the same inputs always produce the same totals,
// so callers may recompute on each edit. Values are carried at full precision and
// rounded only by Rounded().
package tax

import (
	"github.com/shopspring/decimal"

	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
)

// StandardRates are the GST slabs offered on a line.
var StandardRates = []types.Money{
	decimal.NewFromInt(0),
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

// IsStandardRate reports whether pct is one of StandardRates.
// The calculator never calls it; unknown rates are applied as given.
func IsStandardRate(pct types.Money) bool {
	for _, r := range StandardRates {
		if r.Equal(pct) {
			return true
		}
	}
	return false
}

// LineItem is one row of a purchase document.
type LineItem struct {
	ProductRef     id.Ref      `json:"product,omitempty"`
	Description    string      `json:"description"`
	HSNCode        string      `json:"hsn_code"`
	Quantity       types.Money `json:"quantity"`
	UnitName       string      `json:"unit"`
	Rate           types.Money `json:"rate"`
	GSTRatePercent types.Money `json:"gst_rate"`
}

// LineInput is a line as typed into the purchase form.
type LineInput struct {
	ProductRef     id.Ref          `json:"product,omitempty"`
	Description    string          `json:"description"`
	HSNCode        string          `json:"hsn_code"`
	Quantity       types.FormValue `json:"quantity"`
	UnitName       string          `json:"unit"`
	Rate           types.FormValue `json:"rate"`
	GSTRatePercent types.FormValue `json:"gst_rate"`
}

// Line converts form input into a LineItem. Quantity and rate that are empty,
// malformed or negative become zero.
func (in LineInput) Line() LineItem {
	return LineItem{
		ProductRef:     in.ProductRef,
		Description:    in.Description,
		HSNCode:        in.HSNCode,
		Quantity:       in.Quantity.NonNegative(),
		UnitName:       in.UnitName,
		Rate:           in.Rate.NonNegative(),
		GSTRatePercent: in.GSTRatePercent.Decimal(),
	}
}

// ItemTotals are the derived amounts of one line.
type ItemTotals struct {
	TaxableAmount types.Money `json:"taxable_amount"`
	GSTAmount     types.Money `json:"gst_amount"`
	TotalAmount   types.Money `json:"total_amount"`
}

// Rounded returns the totals rounded to 2 decimals for display.
func (t ItemTotals) Rounded() ItemTotals {
	return ItemTotals{
		TaxableAmount: types.Round2(t.TaxableAmount),
		GSTAmount:     types.Round2(t.GSTAmount),
		TotalAmount:   types.Round2(t.TotalAmount),
	}
}

// CalculateItem derives taxable, GST and total amounts of a line.
func CalculateItem(item LineItem) ItemTotals {
	taxable := item.Quantity.Mul(item.Rate)
	gst := taxable.Mul(item.GSTRatePercent).Div(types.Hundred())
	return ItemTotals{
		TaxableAmount: taxable,
		GSTAmount:     gst,
		TotalAmount:   taxable.Add(gst),
	}
}

// Document is the tax-relevant part of a purchase.
type Document struct {
	Items          []LineItem
	IsInterstate   bool
	OtherCharges   types.Money
	DiscountAmount types.Money
}

// DocumentTotals are the derived amounts of a document. Items follows the order
// of Document.Items.
type DocumentTotals struct {
	Items        []ItemTotals `json:"items"`
	Subtotal     types.Money  `json:"subtotal"`
	TotalGST     types.Money  `json:"total_gst"`
	CGST         types.Money  `json:"cgst"`
	SGST         types.Money  `json:"sgst"`
	IGST         types.Money  `json:"igst"`
	OtherCharges types.Money  `json:"other_charges"`
	Discount     types.Money  `json:"discount"`
	Total        types.Money  `json:"total"`
}

// Calculate derives document totals.
//
// Interstate documents carry the whole GST as IGST; otherwise it is split evenly
// into CGST and SGST. The total is not clamped: a discount larger than everything
// else yields a negative total.
func Calculate(doc Document) DocumentTotals {
	totals := DocumentTotals{
		Items:        make([]ItemTotals, len(doc.Items)),
		Subtotal:     decimal.Zero,
		TotalGST:     decimal.Zero,
		CGST:         decimal.Zero,
		SGST:         decimal.Zero,
		IGST:         decimal.Zero,
		OtherCharges: doc.OtherCharges,
		Discount:     doc.DiscountAmount,
	}

	for i, item := range doc.Items {
		it := CalculateItem(item)
		totals.Items[i] = it
		totals.Subtotal = totals.Subtotal.Add(it.TaxableAmount)
		totals.TotalGST = totals.TotalGST.Add(it.GSTAmount)
	}

	if doc.IsInterstate {
		totals.IGST = totals.TotalGST
	} else {
		half := totals.TotalGST.Div(decimal.NewFromInt(2))
		totals.CGST = half
		totals.SGST = half
	}

	totals.Total = totals.Subtotal.
		Add(totals.TotalGST).
		Add(totals.OtherCharges).
		Sub(totals.Discount)

	return totals
}

// Rounded returns a copy with every amount rounded to 2 decimals.
// Each field is rounded independently from its full-precision value.
func (t DocumentTotals) Rounded() DocumentTotals {
	items := make([]ItemTotals, len(t.Items))
	for i, it := range t.Items {
		items[i] = it.Rounded()
	}
	return DocumentTotals{
		Items:        items,
		Subtotal:     types.Round2(t.Subtotal),
		TotalGST:     types.Round2(t.TotalGST),
		CGST:         types.Round2(t.CGST),
		SGST:         types.Round2(t.SGST),
		IGST:         types.Round2(t.IGST),
		OtherCharges: types.Round2(t.OtherCharges),
		Discount:     types.Round2(t.Discount),
		Total:        types.Round2(t.Total),
	}
}

// DocumentInput is the purchase form's totals section.
type DocumentInput struct {
	Items          []LineInput     `json:"items"`
	IsInterstate   bool            `json:"is_interstate"`
	OtherCharges   types.FormValue `json:"other_charges"`
	DiscountAmount types.FormValue `json:"discount_amount"`
}

// Document converts form input into a Document.
func (in DocumentInput) Document() Document {
	items := make([]LineItem, len(in.Items))
	for i, li := range in.Items {
		items[i] = li.Line()
	}
	return Document{
		Items:          items,
		IsInterstate:   in.IsInterstate,
		OtherCharges:   in.OtherCharges.NonNegative(),
		DiscountAmount: in.DiscountAmount.NonNegative(),
	}
}
