// Package stock provides the stock ledger: movement arithmetic, stock status and
// the inventory service that submits adjustments to the backend.
package stock

import (
	"strings"
	"time"

	"invoicely/internal/core/apperror"
	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
)

// MovementType is the cause of a stock change.
type MovementType string

const (
	MovementPurchase      MovementType = "purchase"
	MovementSale          MovementType = "sale"
	MovementAdjustmentIn  MovementType = "adjustment_in"
	MovementAdjustmentOut MovementType = "adjustment_out"
	MovementReturnIn      MovementType = "return_in"
	MovementReturnOut     MovementType = "return_out"
	MovementOpening       MovementType = "opening"
)

// MovementTypes lists every kind in display order.
var MovementTypes = []MovementType{
	MovementPurchase,
	MovementSale,
	MovementAdjustmentIn,
	MovementAdjustmentOut,
	MovementReturnIn,
	MovementReturnOut,
	MovementOpening,
}

// IsValid reports whether t is one of MovementTypes.
func (t MovementType) IsValid() bool {
	for _, mt := range MovementTypes {
		if t == mt {
			return true
		}
	}
	return false
}

// IsInbound reports whether the movement adds stock.
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementPurchase, MovementAdjustmentIn, MovementReturnIn, MovementOpening:
		return true
	default:
		return false
	}
}

// SignedDelta applies the sign of t to a quantity magnitude.
// Inbound kinds add, every other kind subtracts.
func SignedDelta(t MovementType, quantity types.Quantity) types.Quantity {
	q := quantity.Abs()
	if t.IsInbound() {
		return q
	}
	return q.Neg()
}

// Movement is an immutable ledger entry. Quantity is the magnitude as entered;
// direction comes from Type.
type Movement struct {
	ID          id.Ref         `json:"id"`
	ProductID   id.Ref         `json:"product"`
	Type        MovementType   `json:"movement_type"`
	Quantity    types.Quantity `json:"quantity"`
	StockBefore types.Quantity `json:"stock_before"`
	StockAfter  types.Quantity `json:"stock_after"`
	Timestamp   time.Time      `json:"created_at"`
	Reference   string         `json:"reference,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

// SignedQuantity returns the quantity with the sign of the movement type.
func (m Movement) SignedQuantity() types.Quantity {
	return SignedDelta(m.Type, m.Quantity)
}

// IsConsistent reports whether StockAfter = StockBefore + SignedQuantity.
func (m Movement) IsConsistent() bool {
	return m.StockAfter == m.StockBefore.Add(m.SignedQuantity())
}

// AdjustmentRequest asks for one stock change on one product.
type AdjustmentRequest struct {
	ProductID id.Ref
	Type      MovementType
	Quantity  types.Quantity
	Reference string
	Notes     string
}

// Validate checks the request before any arithmetic.
func (r AdjustmentRequest) Validate() error {
	if r.ProductID.IsZero() {
		return apperror.NewFieldValidation("product", "Select a product to adjust")
	}
	if !r.Quantity.IsPositive() {
		return apperror.NewFieldValidation("quantity", "Quantity must be greater than zero").
			WithDetail("quantity", r.Quantity.String())
	}
	if !r.Type.IsValid() {
		return apperror.NewFieldValidation("adjustment_type", "Unknown adjustment type").
			WithDetail("adjustment_type", string(r.Type))
	}
	return nil
}

// Adjustment is the outcome of applying a request to the current stock.
type Adjustment struct {
	Movement Movement       `json:"movement"`
	NewStock types.Quantity `json:"new_stock"`
}

// Adjust computes the new stock level and the movement for req.
// The result may be negative; overselling is allowed and reported via Classify.
func Adjust(current types.Quantity, req AdjustmentRequest, at time.Time) (Adjustment, error) {
	if err := req.Validate(); err != nil {
		return Adjustment{}, err
	}

	newStock, ok := current.AddChecked(SignedDelta(req.Type, req.Quantity))
	if !ok {
		return Adjustment{}, apperror.NewFieldValidation("quantity", "Quantity is too large").
			WithDetail("current_stock", current.String()).
			WithDetail("quantity", req.Quantity.String())
	}

	return Adjustment{
		Movement: Movement{
			ID:          id.Ref(id.New().String()),
			ProductID:   req.ProductID,
			Type:        req.Type,
			Quantity:    req.Quantity,
			StockBefore: current,
			StockAfter:  newStock,
			Timestamp:   at.UTC(),
			Reference:   strings.TrimSpace(req.Reference),
			Notes:       strings.TrimSpace(req.Notes),
		},
		NewStock: newStock,
	}, nil
}
