package business

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domainBusiness "github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
)

type Service struct {
	Repo domainBusiness.Repository
}

type CreateInput struct {
	Name        string
	Owner       string
	PhoneNumber string
	PhotoURL    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domainBusiness.Business, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Owner) == "" {
		return nil, domainBusiness.ErrInvalidBusiness
	}

	b := &domainBusiness.Business{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Owner:       in.Owner,
		PhoneNumber: in.PhoneNumber,
		PhotoURL:    in.PhotoURL,
	}
	if err := s.Repo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) List(ctx context.Context) ([]*domainBusiness.Business, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domainBusiness.Business, error) {
	return s.Repo.FindByID(ctx, id)
}
