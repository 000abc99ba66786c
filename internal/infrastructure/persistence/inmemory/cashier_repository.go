package inmemory

import (
	"context"
	"sync"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
)

type CashierRepository struct {
	mu       sync.RWMutex
	cashiers map[string]*cashier.Cashier
	order    []string
}

func NewCashierRepository() *CashierRepository {
	return &CashierRepository{
		cashiers: make(map[string]*cashier.Cashier),
	}
}

func (r *CashierRepository) Save(_ context.Context, c *cashier.Cashier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cashiers[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	cp := *c
	r.cashiers[c.ID] = &cp
	return nil
}

func (r *CashierRepository) FindByID(_ context.Context, id string) (*cashier.Cashier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cashiers[id]
	if !ok {
		return nil, cashier.ErrCashierNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CashierRepository) FindByUniqueID(_ context.Context, uniqueID string) (*cashier.Cashier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.cashiers {
		if c.UniqueID == uniqueID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, cashier.ErrCashierNotFound
}

func (r *CashierRepository) List(_ context.Context) ([]*cashier.Cashier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*cashier.Cashier, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.cashiers[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *CashierRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cashiers[id]
	if !ok {
		return cashier.ErrCashierNotFound
	}
	c.Active = active
	return nil
}
