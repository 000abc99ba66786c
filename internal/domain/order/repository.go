package order

import "context"

type Repository interface {
	// SaveIfPendingBelow inserts o only while the cashier holds fewer than
	// limit pending orders. The count and insert happen atomically.
	SaveIfPendingBelow(ctx context.Context, o *PaymentOrder, limit int) (bool, error)
	FindByID(ctx context.Context, id string) (*PaymentOrder, error)
	List(ctx context.Context) ([]*PaymentOrder, error)
	// Update overwrites a stored order that is still pending. Stored orders in
	// a terminal status are never overwritten; ErrTerminalState is returned.
	Update(ctx context.Context, o *PaymentOrder) error
	Delete(ctx context.Context, id string) error
}
