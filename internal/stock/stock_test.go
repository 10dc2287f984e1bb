package stock

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barpos/internal/model"
)

type fakeCatalog struct {
	products   []model.Product
	categories []model.Category

	failReads   bool
	failUpdate  bool
	lastUpdated struct {
		id  string
		qty int
	}
}

var errCatalog = errors.New("catalog unavailable")

func (f *fakeCatalog) Products(context.Context) ([]model.Product, error) {
	if f.failReads {
		return nil, errCatalog
	}
	out := make([]model.Product, len(f.products))
	copy(out, f.products)
	return out, nil
}

func (f *fakeCatalog) Categories(context.Context) ([]model.Category, error) {
	if f.failReads {
		return nil, errCatalog
	}
	out := make([]model.Category, len(f.categories))
	copy(out, f.categories)
	return out, nil
}

func (f *fakeCatalog) UpdateStock(_ context.Context, id string, quantity int) (*model.Product, error) {
	if f.failUpdate {
		return nil, errCatalog
	}
	f.lastUpdated.id = id
	f.lastUpdated.qty = quantity
	for _, p := range f.products {
		if p.ID == id {
			p.StockQuantity = quantity
			return &p, nil
		}
	}
	return nil, errors.New("not found")
}

var _ API = (*fakeCatalog)(nil)

func product(id, name, category string, price int64, qty, threshold int) model.Product {
	return model.Product{
		ID:            id,
		Name:          name,
		Price:         decimal.NewFromInt(price),
		StockQuantity: qty,
		MinThreshold:  threshold,
		Category:      category,
	}
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: []model.Product{
			product("p1", "Castel 65cl", "cat-beer", 1000, 24, 10),
			product("p2", "Guinness 33cl", "cat-beer", 1500, 3, 5),
			product("p3", "Coca-Cola 50cl", "cat-soft", 800, 0, 6),
			product("p4", "Eau minerale", "cat-soft", 500, 40, 12),
		},
		categories: []model.Category{
			{ID: "cat-beer", Name: "Bieres"},
			{ID: "cat-soft", Name: "Boissons sucrees"},
		},
	}
}

func loadedDashboard(t *testing.T, catalog *fakeCatalog) *Dashboard {
	t.Helper()
	d := New(catalog)
	require.NoError(t, d.Load(context.Background()))
	return d
}

func TestComputeMetrics(t *testing.T) {
	catalog := testCatalog()
	m := ComputeMetrics(catalog.products)

	assert.Equal(t, 4, m.TotalProducts)
	// p2 (3<=5) and p3 (0<=6) are critical
	assert.Equal(t, 2, m.CriticalStock)
	// 24*1000 + 3*1500 + 0*800 + 40*500 = 48500
	assert.Equal(t, "48500", m.StockValue.String())
	assert.Equal(t, 2, m.Categories)
}

func TestComputeMetricsEmpty(t *testing.T) {
	m := ComputeMetrics(nil)
	assert.Zero(t, m.TotalProducts)
	assert.Zero(t, m.CriticalStock)
	assert.Equal(t, "0", m.StockValue.String())
	assert.Zero(t, m.Categories)
}

func TestLoadAnnotatesCategoryNames(t *testing.T) {
	d := loadedDashboard(t, testCatalog())

	for _, p := range d.Filtered() {
		switch p.Category {
		case "cat-beer":
			assert.Equal(t, "Bieres", p.CategoryName)
		case "cat-soft":
			assert.Equal(t, "Boissons sucrees", p.CategoryName)
		}
	}
}

func TestLoadFailurePropagates(t *testing.T) {
	catalog := testCatalog()
	catalog.failReads = true
	d := New(catalog)

	assert.Error(t, d.Load(context.Background()))
	assert.Empty(t, d.Filtered())
}

func TestCategoryFilterAcceptsIDOrName(t *testing.T) {
	d := loadedDashboard(t, testCatalog())

	d.SetCategoryFilter("cat-beer")
	assert.Len(t, d.Filtered(), 2)

	d.SetCategoryFilter("bieres")
	assert.Len(t, d.Filtered(), 2)

	d.SetCategoryFilter("")
	assert.Len(t, d.Filtered(), 4)
}

func TestOutOfStockFilter(t *testing.T) {
	d := loadedDashboard(t, testCatalog())

	d.SetOutOfStockOnly(true)
	filtered := d.Filtered()
	require.Len(t, filtered, 1)
	assert.Equal(t, "p3", filtered[0].ID)
}

func TestSearchMatchesNameAndCategory(t *testing.T) {
	d := loadedDashboard(t, testCatalog())

	d.SetSearch("guinness")
	filtered := d.Filtered()
	require.Len(t, filtered, 1)
	assert.Equal(t, "p2", filtered[0].ID)

	// category display name is searchable too
	d.SetSearch("bieres")
	assert.Len(t, d.Filtered(), 2)

	d.SetSearch("  ")
	assert.Len(t, d.Filtered(), 4)
}

func TestFiltersCombine(t *testing.T) {
	d := loadedDashboard(t, testCatalog())

	d.SetCategoryFilter("cat-soft")
	d.SetOutOfStockOnly(true)
	filtered := d.Filtered()
	require.Len(t, filtered, 1)
	assert.Equal(t, "p3", filtered[0].ID)

	d.SetSearch("castel")
	assert.Empty(t, d.Filtered())
}

func TestFilteringIsIdempotent(t *testing.T) {
	d := loadedDashboard(t, testCatalog())

	d.SetSearch("cola")
	first := d.Filtered()
	d.SetSearch("cola")
	assert.Equal(t, first, d.Filtered())
}

func TestPagination(t *testing.T) {
	catalog := &fakeCatalog{categories: []model.Category{{ID: "c", Name: "C"}}}
	for i := 0; i < 23; i++ {
		catalog.products = append(catalog.products,
			product(fmt.Sprintf("p%02d", i), fmt.Sprintf("Produit %02d", i), "c", 100, 10, 2))
	}
	d := loadedDashboard(t, catalog)

	assert.Equal(t, 3, d.TotalPages())
	assert.Equal(t, 1, d.Page())
	assert.Len(t, d.Paginated(), 10)

	// each page is the matching slice of the filtered set
	all := d.Filtered()
	d.SetPage(2)
	assert.Equal(t, all[10:20], d.Paginated())
	d.SetPage(3)
	assert.Len(t, d.Paginated(), 3)
	assert.Equal(t, all[20:], d.Paginated())

	// out-of-range pages are ignored
	d.SetPage(0)
	assert.Equal(t, 3, d.Page())
	d.SetPage(4)
	assert.Equal(t, 3, d.Page())
}

func TestFilterChangeResetsPage(t *testing.T) {
	catalog := &fakeCatalog{}
	for i := 0; i < 15; i++ {
		catalog.products = append(catalog.products,
			product(fmt.Sprintf("p%02d", i), fmt.Sprintf("Produit %02d", i), "c", 100, 10, 2))
	}
	d := loadedDashboard(t, catalog)

	d.SetPage(2)
	require.Equal(t, 2, d.Page())
	d.SetSearch("produit")
	assert.Equal(t, 1, d.Page())
}

func TestAdjustStockCrossesThreshold(t *testing.T) {
	catalog := testCatalog()
	d := loadedDashboard(t, catalog)

	// p2 starts at 3 with threshold 5
	require.NoError(t, d.AdjustStock(context.Background(), "p2", 3))

	assert.Equal(t, "p2", catalog.lastUpdated.id)
	assert.Equal(t, 6, catalog.lastUpdated.qty)
	for _, p := range d.Filtered() {
		if p.ID == "p2" {
			assert.Equal(t, 6, p.StockQuantity)
			assert.False(t, p.IsBelowThreshold)
		}
	}
	// only p3 remains critical
	assert.Equal(t, 1, d.Metrics().CriticalStock)
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	catalog := testCatalog()
	d := loadedDashboard(t, catalog)

	require.NoError(t, d.AdjustStock(context.Background(), "p2", -10))
	assert.Equal(t, 0, catalog.lastUpdated.qty)
}

func TestAdjustStockFailureLeavesStateUntouched(t *testing.T) {
	catalog := testCatalog()
	catalog.failUpdate = true
	d := loadedDashboard(t, catalog)
	before := d.Metrics()

	err := d.AdjustStock(context.Background(), "p2", 3)
	require.Error(t, err)

	for _, p := range d.Filtered() {
		if p.ID == "p2" {
			assert.Equal(t, 3, p.StockQuantity)
		}
	}
	assert.Equal(t, before, d.Metrics())
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	d := loadedDashboard(t, testCatalog())
	assert.ErrorIs(t, d.AdjustStock(context.Background(), "nope", 1), ErrUnknownProduct)
}
