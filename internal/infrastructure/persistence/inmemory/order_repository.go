package inmemory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.PaymentOrder
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*order.PaymentOrder),
	}
}

func (r *OrderRepository) SaveIfPendingBelow(_ context.Context, o *order.PaymentOrder, limit int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := 0
	for _, existing := range r.orders {
		if existing.CashierID == o.CashierID && existing.Status == order.StatusPending {
			pending++
		}
	}
	if pending >= limit {
		return false, nil
	}

	stored := *o
	r.orders[o.ID] = &stored
	return true, nil
}

func (r *OrderRepository) FindByID(_ context.Context, id string) (*order.PaymentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}

	cp := *o
	return &cp, nil
}

func (r *OrderRepository) List(_ context.Context) ([]*order.PaymentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*order.PaymentOrder, 0, len(r.orders))
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}

	// newest first, like the dashboard table
	slices.SortFunc(out, func(a, b *order.PaymentOrder) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *OrderRepository) Update(_ context.Context, o *order.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	if stored.Status.Terminal() {
		return order.ErrTerminalState
	}

	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *OrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}
