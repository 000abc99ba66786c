package cashier

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
	domainCashier "github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
)

type Service struct {
	Repo       domainCashier.Repository
	Businesses business.Repository
}

// PayPage is what a consumer sees after scanning a cashier's QR code.
type PayPage struct {
	Cashier  *domainCashier.Cashier
	Business *business.Business
}

func (s *Service) Create(ctx context.Context, name, businessID string) (*domainCashier.Cashier, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(businessID) == "" {
		return nil, domainCashier.ErrInvalidCashier
	}
	if _, err := s.Businesses.FindByID(ctx, businessID); err != nil {
		return nil, err
	}

	c := &domainCashier.Cashier{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(name),
		BusinessID: businessID,
		Active:     true,
		UniqueID:   domainCashier.NewUniqueID(),
	}
	if err := s.Repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]*domainCashier.Cashier, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domainCashier.Cashier, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domainCashier.Cashier, error) {
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, id)
}

// Lookup resolves a pay-URL token. Inactive cashiers are not payable.
func (s *Service) Lookup(ctx context.Context, uniqueID string) (*PayPage, error) {
	c, err := s.Repo.FindByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, domainCashier.ErrCashierInactive
	}

	b, err := s.Businesses.FindByID(ctx, c.BusinessID)
	if err != nil {
		return nil, err
	}
	return &PayPage{Cashier: c, Business: b}, nil
}
