package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"invoicely/internal/core/id"
	"invoicely/internal/domain/purchase"
)

var _ purchase.Backend = (*Client)(nil)

func (c *Client) ListSuppliers(ctx context.Context) ([]purchase.Supplier, error) {
	return list[purchase.Supplier](ctx, c, "purchases/suppliers/", nil)
}

func (c *Client) ListPurchases(ctx context.Context) ([]purchase.Purchase, error) {
	return list[purchase.Purchase](ctx, c, "purchases/", nil)
}

func (c *Client) CreatePurchase(ctx context.Context, payload purchase.Payload) (purchase.Purchase, error) {
	var p purchase.Purchase
	err := c.do(ctx, http.MethodPost, "purchases/", nil, payload, &p)
	return p, err
}

func (c *Client) UpdatePurchase(ctx context.Context, purchaseID id.Ref, payload purchase.Payload) (purchase.Purchase, error) {
	var p purchase.Purchase
	err := c.do(ctx, http.MethodPut, "purchases/"+url.PathEscape(purchaseID.String())+"/", nil, payload, &p)
	return p, err
}
