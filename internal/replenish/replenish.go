// Package replenish drives the replenishment workflow: pending requests,
// urgent (below-threshold) products, metrics, validated request creation and
// cancellation.
package replenish

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"barpos/internal/apierror"
	"barpos/internal/model"
)

const itemsPerPage = 10

// StatusAll disables the status filter.
const StatusAll = "all"

var validate = validator.New()

var (
	// ErrUnknownRequest means the request id is not in the loaded set.
	ErrUnknownRequest = errors.New("replenishment request not found")
	// ErrNotCancellable rejects cancelling a request that already left en_attente.
	ErrNotCancellable = errors.New("only pending requests can be cancelled")
)

// API is the slice of the REST client the workflow needs.
type API interface {
	StockRequests(ctx context.Context) ([]model.ReplenishmentRequest, error)
	LowStockProducts(ctx context.Context) ([]model.Product, error)
	ReplenishmentMetrics(ctx context.Context) (*model.ReplenishmentMetrics, error)
	CreateStockRequest(ctx context.Context, payload model.NewReplenishmentRequest) (*model.ReplenishmentRequest, error)
	CancelStockRequest(ctx context.Context, id string) error
}

type Workflow struct {
	mu           sync.Mutex
	api          API
	requests     []model.ReplenishmentRequest
	urgent       []model.Product
	metrics      model.ReplenishmentMetrics
	statusFilter string
	search       string
	filtered     []model.ReplenishmentRequest
	page         int
}

func New(api API) *Workflow {
	return &Workflow{api: api, statusFilter: StatusAll, page: 1}
}

// Load fetches requests, urgent products and metrics concurrently. On any
// failure the whole state falls back to empty/zeroed so the view still
// renders, and the error is returned for notification.
func (w *Workflow) Load(ctx context.Context) error {
	var (
		requests []model.ReplenishmentRequest
		urgent   []model.Product
		metrics  *model.ReplenishmentMetrics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		requests, err = w.api.StockRequests(gctx)
		return err
	})
	g.Go(func() (err error) {
		urgent, err = w.api.LowStockProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		metrics, err = w.api.ReplenishmentMetrics(gctx)
		return err
	})

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := g.Wait(); err != nil {
		w.requests = nil
		w.urgent = nil
		w.metrics = model.ReplenishmentMetrics{}
		w.applyFilters(true)
		return err
	}
	w.requests = requests
	w.urgent = urgent
	w.metrics = *metrics
	w.applyFilters(true)
	return nil
}

func (w *Workflow) SetStatusFilter(status string) {
	w.mu.Lock()
	w.statusFilter = status
	w.applyFilters(true)
	w.mu.Unlock()
}

func (w *Workflow) SetSearch(query string) {
	w.mu.Lock()
	w.search = query
	w.applyFilters(true)
	w.mu.Unlock()
}

// applyFilters rebuilds the filtered view: status exact-or-all first, then
// case-insensitive substring over request id and item product names. Must be
// called under w.mu.
func (w *Workflow) applyFilters(resetPage bool) {
	out := make([]model.ReplenishmentRequest, 0, len(w.requests))
	search := strings.ToLower(strings.TrimSpace(w.search))
	for _, r := range w.requests {
		if w.statusFilter != "" && w.statusFilter != StatusAll && string(r.Status) != w.statusFilter {
			continue
		}
		if search != "" && !matches(&r, search) {
			continue
		}
		out = append(out, r)
	}
	w.filtered = out
	if resetPage {
		w.page = 1
	} else if max := w.totalPages(); w.page > max && max > 0 {
		w.page = max
	}
}

func matches(r *model.ReplenishmentRequest, search string) bool {
	if strings.Contains(strings.ToLower(r.ID), search) {
		return true
	}
	for _, it := range r.Items {
		if strings.Contains(strings.ToLower(it.ProductName), search) {
			return true
		}
	}
	return false
}

func (w *Workflow) Filtered() []model.ReplenishmentRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.ReplenishmentRequest, len(w.filtered))
	copy(out, w.filtered)
	return out
}

func (w *Workflow) Paginated() []model.ReplenishmentRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	start := (w.page - 1) * itemsPerPage
	if start >= len(w.filtered) {
		return nil
	}
	end := start + itemsPerPage
	if end > len(w.filtered) {
		end = len(w.filtered)
	}
	out := make([]model.ReplenishmentRequest, end-start)
	copy(out, w.filtered[start:end])
	return out
}

// SetPage is a no-op outside [1, totalPages].
func (w *Workflow) SetPage(page int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if page < 1 || page > w.totalPages() {
		return
	}
	w.page = page
}

func (w *Workflow) Page() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.page
}

func (w *Workflow) TotalPages() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totalPages()
}

func (w *Workflow) totalPages() int {
	return (len(w.filtered) + itemsPerPage - 1) / itemsPerPage
}

func (w *Workflow) UrgentProducts() []model.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Product, len(w.urgent))
	copy(out, w.urgent)
	return out
}

func (w *Workflow) Metrics() model.ReplenishmentMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// CreateRequest validates the form, submits it, then reloads the full data
// set from the server; no optimistic patch here, unlike the workboard. On
// failure the error is returned and the caller keeps the form open.
func (w *Workflow) CreateRequest(ctx context.Context, payload model.NewReplenishmentRequest) error {
	if err := validate.Struct(payload); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		return apierror.NewValidation(fields)
	}

	created, err := w.api.CreateStockRequest(ctx, payload)
	if err != nil {
		log.Error().Err(err).Msg("create replenishment request rejected")
		return err
	}
	log.Info().Str("request", created.ID).Int("quantity", created.TotalQuantity()).
		Msg("replenishment request created")

	return w.Load(ctx)
}

// CancelRequest issues the DELETE and, once the server accepted it,
// overwrites the local status to annule pending the next fetch. Only
// en_attente requests can be cancelled.
func (w *Workflow) CancelRequest(ctx context.Context, id string) error {
	w.mu.Lock()
	idx := w.indexOf(id)
	if idx < 0 {
		w.mu.Unlock()
		return ErrUnknownRequest
	}
	if w.requests[idx].Status != model.ReplenishmentPending {
		w.mu.Unlock()
		return ErrNotCancellable
	}
	w.mu.Unlock()

	if err := w.api.CancelStockRequest(ctx, id); err != nil {
		log.Error().Str("request", id).Err(err).Msg("cancel replenishment request rejected")
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if idx := w.indexOf(id); idx >= 0 {
		w.requests[idx].Status = model.ReplenishmentCancelled
	}
	if w.metrics.PendingRequestsCount > 0 {
		w.metrics.PendingRequestsCount--
	}
	w.applyFilters(false)
	return nil
}

func (w *Workflow) indexOf(id string) int {
	for i := range w.requests {
		if w.requests[i].ID == id {
			return i
		}
	}
	return -1
}
