package stock

import "invoicely/internal/core/types"

// Status is the derived stock level of a product.
type Status string

const (
	StatusOK  Status = "ok"
	StatusLow Status = "low"
	StatusOut Status = "out"
)

// Classify derives the status from the current stock and an optional threshold.
// Out of stock wins over low stock, even when the threshold is also <= 0.
func Classify(current types.Quantity, lowStockThreshold *types.Quantity) Status {
	if current <= 0 {
		return StatusOut
	}
	if lowStockThreshold != nil && current <= *lowStockThreshold {
		return StatusLow
	}
	return StatusOK
}

// Summary counts products per status for the inventory dashboard.
type Summary struct {
	Total int `json:"total"`
	OK    int `json:"ok"`
	Low   int `json:"low"`
	Out   int `json:"out"`
}

// Summarize classifies every product's cached stock.
func Summarize(products []Product) Summary {
	s := Summary{Total: len(products)}
	for _, p := range products {
		switch p.Status() {
		case StatusOut:
			s.Out++
		case StatusLow:
			s.Low++
		default:
			s.OK++
		}
	}
	return s
}
