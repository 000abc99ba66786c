package cashier

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrCashierNotFound = errors.New("cashier not found")
	ErrCashierInactive = errors.New("cashier is not active")
	ErrInvalidCashier  = errors.New("cashier name and business are required")
)

type Cashier struct {
	ID         string
	Name       string
	BusinessID string
	Active     bool
	// UniqueID is the short token in the public pay URL.
	UniqueID string
}

type Repository interface {
	Save(ctx context.Context, c *Cashier) error
	FindByID(ctx context.Context, id string) (*Cashier, error)
	FindByUniqueID(ctx context.Context, uniqueID string) (*Cashier, error)
	List(ctx context.Context) ([]*Cashier, error)
	SetActive(ctx context.Context, id string, active bool) error
}

func NewUniqueID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// PayURL is where consumers land after scanning the cashier's QR code.
func (c *Cashier) PayURL(appURL string) string {
	return strings.TrimRight(appURL, "/") + "/qr/" + c.UniqueID
}
