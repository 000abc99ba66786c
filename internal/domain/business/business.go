package business

import (
	"context"
	"errors"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrInvalidBusiness  = errors.New("business name and owner are required")
)

// Business owns cashiers. Owner is the dashboard user id.
type Business struct {
	ID          string
	Name        string
	Owner       string
	PhoneNumber string
	PhotoURL    string
}

type Repository interface {
	Save(ctx context.Context, b *Business) error
	FindByID(ctx context.Context, id string) (*Business, error)
	List(ctx context.Context) ([]*Business, error)
}
