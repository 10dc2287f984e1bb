package api

import (
	"context"
	"net/http"

	"barpos/internal/model"
)

func (c *Client) StockRequests(ctx context.Context) ([]model.ReplenishmentRequest, error) {
	var requests []model.ReplenishmentRequest
	if err := c.do(ctx, http.MethodGet, "/products/stock-requests/", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) CreateStockRequest(ctx context.Context, payload model.NewReplenishmentRequest) (*model.ReplenishmentRequest, error) {
	var created model.ReplenishmentRequest
	if err := c.do(ctx, http.MethodPost, "/products/stock-requests/", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CancelStockRequest asks the backend to drop a pending request.
func (c *Client) CancelStockRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/products/stock-requests/"+id+"/", nil, nil)
}

func (c *Client) ReplenishmentMetrics(ctx context.Context) (*model.ReplenishmentMetrics, error) {
	var metrics model.ReplenishmentMetrics
	if err := c.do(ctx, http.MethodGet, "/products/stock-requests/metrics/", nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}
