package model

import "github.com/shopspring/decimal"

// Product mirrors the backend serializer. IsBelowThreshold is
// server-computed on fetch and must be recomputed locally whenever the
// client changes StockQuantity.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	MinThreshold  int             `json:"min_threshold"`
	Unit          string          `json:"unit,omitempty"`
	Category      string          `json:"category"`
	// CategoryName is annotated client-side from the category lookup.
	CategoryName     string `json:"-"`
	IsBelowThreshold bool   `json:"is_below_threshold"`
}

// BelowThreshold derives the critical-stock flag from current quantities.
func (p *Product) BelowThreshold() bool {
	return p.StockQuantity <= p.MinThreshold
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
