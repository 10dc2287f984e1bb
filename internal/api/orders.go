package api

import (
	"context"
	"net/http"

	"barpos/internal/model"
)

// OpenOrders lists orders still waiting to be prepared ("ouverte").
func (c *Client) OpenOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/preparing/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ServedOrders lists orders marked served and awaiting payment.
func (c *Client) ServedOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/served/", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GlobalDailyRevenue fetches today's cash metrics for the barman view.
func (c *Client) GlobalDailyRevenue(ctx context.Context) (*model.CashMetrics, error) {
	var metrics model.CashMetrics
	if err := c.do(ctx, http.MethodGet, "/orders/barman/revenue/global/", nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}

// ValidateOrder advances an order to "servie" and returns the updated record.
func (c *Client) ValidateOrder(ctx context.Context, id string) (*model.Order, error) {
	body := map[string]string{"status": string(model.OrderServed)}
	var order model.Order
	if err := c.do(ctx, http.MethodPut, "/orders/"+id+"/validate/", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CloseOrder finalises an order with the chosen payment type.
func (c *Client) CloseOrder(ctx context.Context, id, paymentType string) (*model.Order, error) {
	body := map[string]string{
		"status":       string(model.OrderClosed),
		"payment_type": paymentType,
	}
	var order model.Order
	if err := c.do(ctx, http.MethodPatch, "/orders/"+id+"/update/", body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}
