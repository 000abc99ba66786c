package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, unique_id, amount, currency, network, cashier_id, status, transaction_hash, created_at, updated_at`

func (r *OrderRepository) SaveIfPendingBelow(ctx context.Context, o *order.PaymentOrder, limit int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_orders (`+orderColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		 WHERE (SELECT COUNT(*) FROM payment_orders
		        WHERE cashier_id = ? AND status = ?) < ?`,
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
		o.CashierID,
		string(order.StatusPending),
		limit,
	)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	// 0 rows = limit reached
	return affected == 1, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.PaymentOrder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+`
		 FROM payment_orders
		 WHERE id = ?`,
		id,
	)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	return o, err
}

func (r *OrderRepository) List(ctx context.Context) ([]*order.PaymentOrder, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+`
		 FROM payment_orders
		 ORDER BY created_at DESC, id`,
	)
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
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_orders
		 SET amount = ?, currency = ?, network = ?, status = ?, transaction_hash = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
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

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	if _, err := r.FindByID(ctx, o.ID); err != nil {
		return err
	}
	return order.ErrTerminalState
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_orders WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*order.PaymentOrder, error) {
	var o order.PaymentOrder
	var status string

	if err := s.Scan(
		&o.ID,
		&o.UniqueID,
		&o.Amount,
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

	o.Status = order.Status(status)
	return &o, nil
}
