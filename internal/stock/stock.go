// Package stock drives the bar stock dashboard: product and category loads,
// aggregate metrics, client-side filtering and pagination, and local stock
// adjustments.
package stock

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"barpos/internal/model"
)

const itemsPerPage = 10

// ErrUnknownProduct means the product is not in the loaded set.
var ErrUnknownProduct = errors.New("product not found on the dashboard")

// API is the slice of the REST client the dashboard needs.
type API interface {
	Products(ctx context.Context) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
	UpdateStock(ctx context.Context, id string, quantity int) (*model.Product, error)
}

// Metrics are recomputed from the full product set after every load and
// every local adjustment. Pure derivation, never maintained incrementally,
// so they cannot drift.
type Metrics struct {
	TotalProducts int
	CriticalStock int
	StockValue    decimal.Decimal
	Categories    int
}

// ComputeMetrics derives the dashboard aggregates from a product set.
func ComputeMetrics(products []model.Product) Metrics {
	m := Metrics{StockValue: decimal.Zero}
	cats := make(map[string]bool)
	for i := range products {
		p := &products[i]
		m.TotalProducts++
		if p.StockQuantity <= p.MinThreshold {
			m.CriticalStock++
		}
		m.StockValue = m.StockValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.StockQuantity))))
		if p.Category != "" {
			cats[p.Category] = true
		}
	}
	m.Categories = len(cats)
	return m
}

// Filters combine in a fixed order: category, out-of-stock, then substring
// search over name or category name.
type Filters struct {
	Category       string
	OutOfStockOnly bool
	Search         string
}

type Dashboard struct {
	mu         sync.Mutex
	api        API
	products   []model.Product
	categories []model.Category
	metrics    Metrics
	filters    Filters
	filtered   []model.Product
	page       int
}

func New(api API) *Dashboard {
	return &Dashboard{api: api, page: 1, metrics: Metrics{StockValue: decimal.Zero}}
}

// Load fetches products and categories concurrently, annotates each product
// with its category's display name, and recomputes metrics and filters.
func (d *Dashboard) Load(ctx context.Context) error {
	var (
		products   []model.Product
		categories []model.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = d.api.Products(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = d.api.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for i := range products {
		if name, ok := names[products[i].Category]; ok {
			products[i].CategoryName = name
		} else {
			products[i].CategoryName = products[i].Category
		}
	}

	d.mu.Lock()
	d.products = products
	d.categories = categories
	d.metrics = ComputeMetrics(d.products)
	d.applyFilters(true)
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) SetCategoryFilter(category string) {
	d.mu.Lock()
	d.filters.Category = category
	d.applyFilters(true)
	d.mu.Unlock()
}

func (d *Dashboard) SetOutOfStockOnly(only bool) {
	d.mu.Lock()
	d.filters.OutOfStockOnly = only
	d.applyFilters(true)
	d.mu.Unlock()
}

func (d *Dashboard) SetSearch(query string) {
	d.mu.Lock()
	d.filters.Search = query
	d.applyFilters(true)
	d.mu.Unlock()
}

// applyFilters rebuilds the filtered view. Must be called under d.mu.
// resetPage is true on every filter change, false when only the data moved.
func (d *Dashboard) applyFilters(resetPage bool) {
	out := make([]model.Product, 0, len(d.products))
	search := strings.ToLower(strings.TrimSpace(d.filters.Search))
	for _, p := range d.products {
		if d.filters.Category != "" &&
			p.Category != d.filters.Category && !strings.EqualFold(p.CategoryName, d.filters.Category) {
			continue
		}
		if d.filters.OutOfStockOnly && p.StockQuantity != 0 {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.CategoryName), search) {
			continue
		}
		out = append(out, p)
	}
	d.filtered = out
	if resetPage {
		d.page = 1
	} else if max := d.totalPages(); d.page > max && max > 0 {
		d.page = max
	}
}

func (d *Dashboard) Filtered() []model.Product {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Product, len(d.filtered))
	copy(out, d.filtered)
	return out
}

// Paginated returns the current page slice of the filtered set.
func (d *Dashboard) Paginated() []model.Product {
	d.mu.Lock()
	defer d.mu.Unlock()
	start := (d.page - 1) * itemsPerPage
	if start >= len(d.filtered) {
		return nil
	}
	end := start + itemsPerPage
	if end > len(d.filtered) {
		end = len(d.filtered)
	}
	out := make([]model.Product, end-start)
	copy(out, d.filtered[start:end])
	return out
}

// SetPage is a no-op outside [1, totalPages].
func (d *Dashboard) SetPage(page int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if page < 1 || page > d.totalPages() {
		return
	}
	d.page = page
}

func (d *Dashboard) Page() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page
}

func (d *Dashboard) TotalPages() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totalPages()
}

func (d *Dashboard) totalPages() int {
	return (len(d.filtered) + itemsPerPage - 1) / itemsPerPage
}

func (d *Dashboard) Metrics() Metrics {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.metrics
}

func (d *Dashboard) Categories() []model.Category {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Category, len(d.categories))
	copy(out, d.categories)
	return out
}

// AdjustStock changes a product's quantity by delta (clamped at zero),
// persists the new absolute quantity, then recomputes the below-threshold
// flag and the aggregate metrics. On failure nothing changes locally.
func (d *Dashboard) AdjustStock(ctx context.Context, id string, delta int) error {
	d.mu.Lock()
	idx := d.indexOf(id)
	if idx < 0 {
		d.mu.Unlock()
		return ErrUnknownProduct
	}
	newQty := d.products[idx].StockQuantity + delta
	if newQty < 0 {
		newQty = 0
	}
	d.mu.Unlock()

	if _, err := d.api.UpdateStock(ctx, id, newQty); err != nil {
		log.Error().Str("product", id).Err(err).Msg("stock update rejected")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if idx := d.indexOf(id); idx >= 0 {
		p := &d.products[idx]
		p.StockQuantity = newQty
		p.IsBelowThreshold = p.BelowThreshold()
	}
	d.metrics = ComputeMetrics(d.products)
	d.applyFilters(false)
	return nil
}

func (d *Dashboard) indexOf(id string) int {
	for i := range d.products {
		if d.products[i].ID == id {
			return i
		}
	}
	return -1
}
