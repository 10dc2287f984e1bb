package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus moves strictly forward: ouverte → servie → fermee.
// The backend rejects any other transition; the client never reopens.
type OrderStatus string

const (
	OrderOpen   OrderStatus = "ouverte"
	OrderServed OrderStatus = "servie"
	OrderClosed OrderStatus = "fermee"
)

// Payment types accepted at close time.
const (
	PaymentCash        = "cash"
	PaymentMobileMoney = "mobile_money"
)

type OrderItem struct {
	Product     string          `json:"product"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Order is the server-owned order record. The client holds transient cached
// copies split across the workboard's open and preparing lists.
type Order struct {
	ID                string          `json:"id"`
	NumberOfCustomers int             `json:"number_of_customers"`
	Status            OrderStatus     `json:"status"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PaymentType       string          `json:"payment_type,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	Items             []OrderItem     `json:"items"`
}

// CashMetrics is the daily aggregate from /orders/barman/revenue/global/.
// Read-only except for the client-side incremental bumps applied right after
// a successful payment, ahead of the next periodic refetch.
type CashMetrics struct {
	Date                string          `json:"date"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	TotalClosedOrders   int             `json:"total_closed_orders"`
	CashPayments        decimal.Decimal `json:"cash_payments"`
	MobileMoneyPayments decimal.Decimal `json:"mobile_money_payments"`
}
