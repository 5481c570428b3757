package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"invoicely/internal/core/id"
	"invoicely/internal/domain/stock"
)

var _ stock.Backend = (*Client)(nil)

func productPath(productID id.Ref, suffix string) string {
	return "inventory/products/" + url.PathEscape(productID.String()) + "/" + suffix
}

func (c *Client) GetProduct(ctx context.Context, productID id.Ref) (stock.Product, error) {
	var p stock.Product
	err := c.do(ctx, http.MethodGet, productPath(productID, ""), nil, nil, &p)
	return p, err
}

func (c *Client) ListProducts(ctx context.Context) ([]stock.Product, error) {
	return list[stock.Product](ctx, c, "inventory/products/", nil)
}

func (c *Client) ListMovements(ctx context.Context, productID id.Ref) ([]stock.Movement, error) {
	return list[stock.Movement](ctx, c, productPath(productID, "movements/"), nil)
}

// AdjustStock posts an adjustment; the backend answers with the updated product.
func (c *Client) AdjustStock(ctx context.Context, productID id.Ref, payload stock.AdjustStockPayload) (stock.Product, error) {
	var p stock.Product
	err := c.do(ctx, http.MethodPost, productPath(productID, "adjust-stock/"), nil, payload, &p)
	return p, err
}
