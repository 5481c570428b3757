// Package purchase provides the purchase document: the in-memory draft edited on
// the purchase screen and the payload it is submitted as.
package purchase

import (
	"strings"
	"time"

	"invoicely/internal/core/apperror"
	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
	"invoicely/internal/domain/tax"
)

// DateLayout is the wire format of purchase dates.
const DateLayout = "2006-01-02"

// Supplier is a backend supplier record.
type Supplier struct {
	ID        id.Ref `json:"id"`
	Name      string `json:"name"`
	GSTIN     string `json:"gstin,omitempty"`
	StateCode string `json:"state_code,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Purchase is a saved purchase as listed by the backend.
type Purchase struct {
	ID            id.Ref       `json:"id"`
	InvoiceNumber string       `json:"invoice_number"`
	SupplierID    id.Ref       `json:"supplier"`
	SupplierName  string       `json:"supplier_name,omitempty"`
	PurchaseDate  string       `json:"purchase_date"`
	IsInterstate  bool         `json:"is_interstate"`
	Subtotal      types.Amount `json:"subtotal"`
	TaxAmount     types.Amount `json:"tax_amount"`
	TotalAmount   types.Amount `json:"total_amount"`
	Status        string       `json:"status,omitempty"`
}

// Draft is a purchase being edited. It is submitted as a whole, never in parts.
type Draft struct {
	// ID is empty for a new purchase.
	ID             id.Ref
	SupplierID     id.Ref
	PurchaseDate   string
	InvoiceNumber  string
	Notes          string
	IsInterstate   bool
	OtherCharges   types.Money
	DiscountAmount types.Money
	Items          []tax.LineItem
}

// IsNew reports whether the draft creates a purchase.
func (d Draft) IsNew() bool { return d.ID.IsZero() }

// Document returns the tax-relevant view of the draft.
func (d Draft) Document() tax.Document {
	return tax.Document{
		Items:          d.Items,
		IsInterstate:   d.IsInterstate,
		OtherCharges:   d.OtherCharges,
		DiscountAmount: d.DiscountAmount,
	}
}

// Totals computes the draft's totals at full precision.
func (d Draft) Totals() tax.DocumentTotals {
	return tax.Calculate(d.Document())
}

// Validate checks what the purchase form requires before submitting.
func (d Draft) Validate() error {
	if d.SupplierID.IsZero() {
		return apperror.NewFieldValidation("supplier", "Please select a supplier")
	}
	if strings.TrimSpace(d.PurchaseDate) == "" {
		return apperror.NewFieldValidation("purchase_date", "Please select a purchase date")
	}
	if _, err := time.Parse(DateLayout, d.PurchaseDate); err != nil {
		return apperror.NewFieldValidation("purchase_date", "Purchase date must be YYYY-MM-DD").
			WithDetail("purchase_date", d.PurchaseDate)
	}
	if len(d.Items) == 0 {
		return apperror.NewFieldValidation("items", "Add at least one item")
	}
	for i, item := range d.Items {
		if item.ProductRef.IsZero() && strings.TrimSpace(item.Description) == "" {
			return apperror.NewFieldValidation("items", "Item needs a product or a description").
				WithDetail("line_no", i+1)
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewFieldValidation("items", "Quantity must be greater than zero").
				WithDetail("line_no", i+1)
		}
	}
	return nil
}

// DraftInput is the purchase form as posted by the browser.
type DraftInput struct {
	SupplierID    id.Ref `json:"supplier"`
	PurchaseDate  string `json:"purchase_date"`
	InvoiceNumber string `json:"invoice_number"`
	Notes         string `json:"notes"`
	tax.DocumentInput
}

// Draft converts form input; numeric fields are parsed leniently.
func (in DraftInput) Draft() Draft {
	doc := in.DocumentInput.Document()
	return Draft{
		SupplierID:     in.SupplierID,
		PurchaseDate:   strings.TrimSpace(in.PurchaseDate),
		InvoiceNumber:  strings.TrimSpace(in.InvoiceNumber),
		Notes:          strings.TrimSpace(in.Notes),
		IsInterstate:   doc.IsInterstate,
		OtherCharges:   doc.OtherCharges,
		DiscountAmount: doc.DiscountAmount,
		Items:          doc.Items,
	}
}
