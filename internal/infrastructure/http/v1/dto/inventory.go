package dto

import (
	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
	"invoicely/internal/domain/stock"
)

// ProductListResponse is the inventory screen: products plus status counts.
type ProductListResponse struct {
	Items   []ProductResponse `json:"items"`
	Count   int               `json:"count"`
	Summary stock.Summary     `json:"summary"`
}

// ProductResponse is a product with its stock status.
type ProductResponse struct {
	stock.Product
	Status stock.Status `json:"stock_status"`
}

func FromProducts(products []stock.Product) ProductListResponse {
	items := make([]ProductResponse, len(products))
	for i, p := range products {
		items[i] = ProductResponse{Product: p, Status: p.Status()}
	}
	return ProductListResponse{
		Items:   items,
		Count:   len(items),
		Summary: stock.Summarize(products),
	}
}

// AdjustStockRequest is the adjust-stock form.
type AdjustStockRequest struct {
	AdjustmentType string          `json:"adjustment_type" binding:"required"`
	Quantity       types.FormValue `json:"quantity" binding:"required"`
	Reference      string          `json:"reference"`
	Notes          string          `json:"notes" binding:"max=500"`
}

// ToDomain builds the adjustment request for productID.
func (r AdjustStockRequest) ToDomain(productID id.Ref) stock.AdjustmentRequest {
	return stock.AdjustmentRequest{
		ProductID: productID,
		Type:      stock.MovementType(r.AdjustmentType),
		Quantity:  types.ParseQuantityOrZero(string(r.Quantity)),
		Reference: r.Reference,
		Notes:     r.Notes,
	}
}

// AdjustmentResponse reports the result of a previewed or submitted adjustment.
type AdjustmentResponse struct {
	stock.AdjustmentResult
	NewStock types.Quantity `json:"new_stock"`
}

func FromAdjustment(r stock.AdjustmentResult) AdjustmentResponse {
	return AdjustmentResponse{AdjustmentResult: r, NewStock: r.Product.CurrentStock}
}
