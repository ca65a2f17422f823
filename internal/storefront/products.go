package storefront

import (
	"context"
	"net/http"
)

// Images holds the two rendition URLs the catalog serves.
type Images struct {
	S  string `json:"S"`
	XL string `json:"XL"`
}

// StockItem is one catalog row as the stock table shows it.
type StockItem struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Reference       string  `json:"reference"`
	PriceVAT        float64 `json:"price_vat"`
	PriceNet        float64 `json:"price_not"`
	Brand           string  `json:"brand"`
	Images          Images  `json:"images"`
	Category        string  `json:"category"`
	NutritionalInfo string  `json:"nutritionalInfo"`
	Quantity        int     `json:"quantity"`
}

// ProductInput carries the fields an operator provides when creating a
// product; the remote catalog enriches the rest from the reference.
type ProductInput struct {
	Reference     string  `json:"reference"`
	PriceVAT      float64 `json:"price_vat"`
	PriceNet      float64 `json:"price_not"`
	StockQuantity int     `json:"stock_quantity"`
}

// ProductPatch is a partial product update; nil fields stay untouched.
type ProductPatch struct {
	Name     *string  `json:"name,omitempty"`
	PriceVAT *float64 `json:"price_vat,omitempty"`
	PriceNet *float64 `json:"price_not,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
}

// ListProducts returns the full stock table.
func (c *Client) ListProducts(ctx context.Context) ([]StockItem, error) {
	var items []StockItem
	if err := c.get(ctx, "/product", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*StockItem, error) {
	var item StockItem
	if err := c.do(ctx, http.MethodPost, "/product", input, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateProduct applies a partial update to one product.
func (c *Client) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*StockItem, error) {
	var item StockItem
	if err := c.do(ctx, http.MethodPut, "/product/"+id, patch, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteProduct removes a product from the catalog.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/product/"+id, nil, nil)
}
