package api

import (
	"context"
	"net/http"

	"barpos/internal/model"
)

func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/products/", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := c.do(ctx, http.MethodGet, "/categories/", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateStock sets a product's absolute stock quantity and returns the
// server's view of the product.
func (c *Client) UpdateStock(ctx context.Context, id string, quantity int) (*model.Product, error) {
	body := map[string]int{"stock_quantity": quantity}
	var product model.Product
	if err := c.do(ctx, http.MethodPatch, "/products/"+id+"/update-stock/", body, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// LowStockProducts lists products at or under their minimum threshold.
func (c *Client) LowStockProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := c.do(ctx, http.MethodGet, "/products/low-stock/", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}
