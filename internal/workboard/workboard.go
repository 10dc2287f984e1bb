// Package workboard drives the order queues: the open list waiting for
// preparation, the preparing list awaiting payment, and the daily cash
// metrics. The two lists are kept disjoint: an order lives in exactly one
// of them and disappears once closed.
package workboard

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"barpos/internal/model"
	"barpos/internal/payment"
)

// API is the slice of the REST client the workboard needs.
type API interface {
	OpenOrders(ctx context.Context) ([]model.Order, error)
	ServedOrders(ctx context.Context) ([]model.Order, error)
	GlobalDailyRevenue(ctx context.Context) (*model.CashMetrics, error)
	ValidateOrder(ctx context.Context, id string) (*model.Order, error)
	CloseOrder(ctx context.Context, id, paymentType string) (*model.Order, error)
}

var (
	// ErrRoleNotAllowed rejects a prepare action from a role other than serveur.
	ErrRoleNotAllowed = errors.New("only the serveur role may prepare orders")
	// ErrUnknownOrder means the order is not in the list the action expects.
	ErrUnknownOrder = errors.New("order not found on the workboard")
)

// Snapshot is a read-only copy of the board for rendering.
type Snapshot struct {
	Metrics   model.CashMetrics
	Open      []model.Order
	Preparing []model.Order
	Pending   int
}

type Board struct {
	mu        sync.Mutex
	api       API
	role      model.Role
	metrics   model.CashMetrics
	open      []model.Order
	preparing []model.Order
	loaded    bool
}

func New(api API, role model.Role) *Board {
	return &Board{api: api, role: role}
}

// LoadInitialData issues the three concurrent reads. On failure the lists
// stay empty and the error is returned for a transient warning; the caller
// should not start the poller until a load succeeded.
func (b *Board) LoadInitialData(ctx context.Context) error {
	metrics, open, served, err := b.fetch(ctx)
	if err != nil {
		b.mu.Lock()
		b.open, b.preparing = nil, nil
		b.mu.Unlock()
		return err
	}

	b.mu.Lock()
	b.reconcile(metrics, open, served)
	b.loaded = true
	b.mu.Unlock()
	return nil
}

// Refresh re-reads server truth and reconciles it into local state. Safe to
// call from the poller concurrently with user actions.
func (b *Board) Refresh(ctx context.Context) error {
	metrics, open, served, err := b.fetch(ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.reconcile(metrics, open, served)
	b.mu.Unlock()
	return nil
}

func (b *Board) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

// fetch joins the three reads; any failure fails the whole cycle.
func (b *Board) fetch(ctx context.Context) (*model.CashMetrics, []model.Order, []model.Order, error) {
	var (
		metrics *model.CashMetrics
		open    []model.Order
		served  []model.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		metrics, err = b.api.GlobalDailyRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		open, err = b.api.OpenOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		served, err = b.api.ServedOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return metrics, open, served, nil
}

// reconcile merges server truth into local state keyed by order id. It is
// idempotent: both the periodic refresh and an optimistic patch followed by
// a refresh converge to the same state. An id reported in both lists lands
// only in preparing; closed orders are simply absent. Must be called under
// b.mu.
func (b *Board) reconcile(metrics *model.CashMetrics, open, served []model.Order) {
	inPreparing := make(map[string]bool, len(served))
	preparing := make([]model.Order, 0, len(served))
	for _, o := range served {
		if inPreparing[o.ID] {
			continue
		}
		inPreparing[o.ID] = true
		preparing = append(preparing, o)
	}

	seen := make(map[string]bool, len(open))
	opened := make([]model.Order, 0, len(open))
	for _, o := range open {
		if inPreparing[o.ID] || seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		opened = append(opened, o)
	}

	b.open = opened
	b.preparing = preparing
	if metrics != nil {
		b.metrics = *metrics
	}
}

// PrepareOrder advances an open order to servie. On success the
// server-returned order moves to the preparing list; on failure both lists
// are untouched (no optimistic pre-mutation happened).
func (b *Board) PrepareOrder(ctx context.Context, id string) error {
	if b.role != model.RoleServeur {
		return ErrRoleNotAllowed
	}

	b.mu.Lock()
	idx := indexOf(b.open, id)
	b.mu.Unlock()
	if idx < 0 {
		return ErrUnknownOrder
	}

	updated, err := b.api.ValidateOrder(ctx, id)
	if err != nil {
		log.Error().Str("order", id).Err(err).Msg("prepare order rejected")
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if idx := indexOf(b.open, id); idx >= 0 {
		b.open = append(b.open[:idx], b.open[idx+1:]...)
	}
	if indexOf(b.preparing, id) < 0 {
		b.preparing = append(b.preparing, *updated)
	}
	return nil
}

// StartPayment opens a payment capture for a preparing order.
func (b *Board) StartPayment(id string) (*payment.Capture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := indexOf(b.preparing, id)
	if idx < 0 {
		return nil, ErrUnknownOrder
	}
	return payment.NewCapture(b.preparing[idx]), nil
}

// CompletePayment closes the order with the confirmed payment. On success
// the order leaves the preparing list and the cash metrics are bumped ahead
// of the next refetch. On failure the order stays listed and the next poll
// reconciles.
func (b *Board) CompletePayment(ctx context.Context, p *payment.Payment) error {
	b.mu.Lock()
	idx := indexOf(b.preparing, p.OrderID)
	if idx < 0 {
		b.mu.Unlock()
		return ErrUnknownOrder
	}
	order := b.preparing[idx]
	b.mu.Unlock()

	if _, err := b.api.CloseOrder(ctx, p.OrderID, p.PaymentType); err != nil {
		log.Error().Str("order", p.OrderID).Err(err).Msg("close order rejected")
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if idx := indexOf(b.preparing, p.OrderID); idx >= 0 {
		b.preparing = append(b.preparing[:idx], b.preparing[idx+1:]...)
	}
	b.metrics.TotalRevenue = b.metrics.TotalRevenue.Add(order.TotalAmount)
	b.metrics.TotalClosedOrders++
	if p.PaymentType == model.PaymentCash {
		b.metrics.CashPayments = b.metrics.CashPayments.Add(order.TotalAmount)
	} else {
		b.metrics.MobileMoneyPayments = b.metrics.MobileMoneyPayments.Add(order.TotalAmount)
	}
	return nil
}

// Pending is always len(open) + len(preparing).
func (b *Board) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.open) + len(b.preparing)
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	open := make([]model.Order, len(b.open))
	copy(open, b.open)
	preparing := make([]model.Order, len(b.preparing))
	copy(preparing, b.preparing)
	return Snapshot{
		Metrics:   b.metrics,
		Open:      open,
		Preparing: preparing,
		Pending:   len(open) + len(preparing),
	}
}

func indexOf(orders []model.Order, id string) int {
	for i := range orders {
		if orders[i].ID == id {
			return i
		}
	}
	return -1
}
