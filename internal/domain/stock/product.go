package stock

import (
	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
)

// Product is the backend's product record as seen by the inventory screens.
// CurrentStock is a cached projection of the product's ledger.
type Product struct {
	ID                id.Ref          `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku,omitempty"`
	HSNCode           string          `json:"hsn_code,omitempty"`
	UnitName          string          `json:"unit,omitempty"`
	PurchaseRate      types.Amount    `json:"purchase_price"`
	GSTRatePercent    types.Amount    `json:"gst_rate"`
	CurrentStock      types.Quantity  `json:"current_stock"`
	LowStockThreshold *types.Quantity `json:"low_stock_threshold"`
	IsActive          bool            `json:"is_active"`
}

// Status classifies the cached stock.
func (p Product) Status() Status {
	return Classify(p.CurrentStock, p.LowStockThreshold)
}

// AdjustStockPayload is the body of the backend's adjust-stock endpoint.
type AdjustStockPayload struct {
	AdjustmentType MovementType   `json:"adjustment_type"`
	Quantity       types.Quantity `json:"quantity"`
	Notes          string         `json:"notes"`
}
