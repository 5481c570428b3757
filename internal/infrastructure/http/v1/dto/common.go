// Package dto provides the gateway's request and response bodies.
package dto

// ListResponse wraps a collection.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewList wraps items; a nil slice is rendered as [].
func NewList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}

// SuccessResponse is returned by calls with nothing else to report.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
