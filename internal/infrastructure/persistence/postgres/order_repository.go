package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `id, unique_id, amount::text, currency, network, cashier_id, status, transaction_hash, created_at, updated_at`

// SaveIfPendingBelow locks the cashier row so concurrent creates for the same
// cashier count pending orders one at a time.
func (r *OrderRepository) SaveIfPendingBelow(ctx context.Context, o *order.PaymentOrder, limit int) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM cashiers WHERE id = $1 FOR UPDATE`, o.CashierID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, cashier.ErrCashierNotFound
	}
	if err != nil {
		return false, err
	}

	var pending int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_orders WHERE cashier_id = $1 AND status = $2`,
		o.CashierID, string(order.StatusPending),
	).Scan(&pending)
	if err != nil {
		return false, err
	}
	if pending >= limit {
		return false, nil
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO payment_orders (id, unique_id, amount, currency, network, cashier_id, status, transaction_hash, created_at, updated_at)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID,
		o.UniqueID,
		o.Amount.String(),
		o.Currency,
		o.Network,
		o.CashierID,
		string(o.Status),
		o.TransactionHash,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.PaymentOrder, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM payment_orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	return o, err
}

func (r *OrderRepository) List(ctx context.Context) ([]*order.PaymentOrder, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM payment_orders ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*order.PaymentOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Update(ctx context.Context, o *order.PaymentOrder) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payment_orders
		 SET amount = $1::numeric, currency = $2, network = $3, status = $4, transaction_hash = $5, updated_at = $6
		 WHERE id = $7 AND status = $8`,
		o.Amount.String(),
		o.Currency,
		o.Network,
		string(o.Status),
		o.TransactionHash,
		o.UpdatedAt,
		o.ID,
		string(order.StatusPending),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	if _, err := r.FindByID(ctx, o.ID); err != nil {
		return err
	}
	return order.ErrTerminalState
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payment_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*order.PaymentOrder, error) {
	var o order.PaymentOrder
	var amount, status string

	if err := row.Scan(
		&o.ID,
		&o.UniqueID,
		&amount,
		&o.Currency,
		&o.Network,
		&o.CashierID,
		&status,
		&o.TransactionHash,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	o.Amount = d
	o.Status = order.Status(status)
	return &o, nil
}
