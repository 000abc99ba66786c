package inmemory

import (
	"context"
	"sync"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
)

type BusinessRepository struct {
	mu         sync.RWMutex
	businesses map[string]*business.Business
	order      []string
}

func NewBusinessRepository() *BusinessRepository {
	return &BusinessRepository{
		businesses: make(map[string]*business.Business),
	}
}

func (r *BusinessRepository) Save(_ context.Context, b *business.Business) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.businesses[b.ID]; !exists {
		r.order = append(r.order, b.ID)
	}
	cp := *b
	r.businesses[b.ID] = &cp
	return nil
}

func (r *BusinessRepository) FindByID(_ context.Context, id string) (*business.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.businesses[id]
	if !ok {
		return nil, business.ErrBusinessNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *BusinessRepository) List(_ context.Context) ([]*business.Business, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*business.Business, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.businesses[id]
		out = append(out, &cp)
	}
	return out, nil
}
