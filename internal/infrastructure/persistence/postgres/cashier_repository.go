package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
)

type CashierRepository struct {
	pool *pgxpool.Pool
}

func NewCashierRepository(pool *pgxpool.Pool) *CashierRepository {
	return &CashierRepository{pool: pool}
}

func (r *CashierRepository) Save(ctx context.Context, c *cashier.Cashier) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cashiers (id, name, business_id, active, unique_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active`,
		c.ID, c.Name, c.BusinessID, c.Active, c.UniqueID,
	)
	return err
}

func (r *CashierRepository) FindByID(ctx context.Context, id string) (*cashier.Cashier, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

func (r *CashierRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*cashier.Cashier, error) {
	return r.findOne(ctx, `WHERE unique_id = $1`, uniqueID)
}

func (r *CashierRepository) findOne(ctx context.Context, where string, arg any) (*cashier.Cashier, error) {
	var c cashier.Cashier
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, business_id, active, unique_id FROM cashiers `+where, arg,
	).Scan(&c.ID, &c.Name, &c.BusinessID, &c.Active, &c.UniqueID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, cashier.ErrCashierNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CashierRepository) List(ctx context.Context) ([]*cashier.Cashier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, business_id, active, unique_id FROM cashiers ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*cashier.Cashier
	for rows.Next() {
		var c cashier.Cashier
		if err := rows.Scan(&c.ID, &c.Name, &c.BusinessID, &c.Active, &c.UniqueID); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *CashierRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE cashiers SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return cashier.ErrCashierNotFound
	}
	return nil
}
