package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
)

type CashierRepository struct {
	db *sql.DB
}

func NewCashierRepository(db *sql.DB) *CashierRepository {
	return &CashierRepository{db: db}
}

func (r *CashierRepository) Save(ctx context.Context, c *cashier.Cashier) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cashiers (id, name, business_id, active, unique_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, active = excluded.active`,
		c.ID,
		c.Name,
		c.BusinessID,
		c.Active,
		c.UniqueID,
		time.Now().UTC(),
	)
	return err
}

func (r *CashierRepository) FindByID(ctx context.Context, id string) (*cashier.Cashier, error) {
	return r.findOne(ctx, `WHERE id = ?`, id)
}

func (r *CashierRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*cashier.Cashier, error) {
	return r.findOne(ctx, `WHERE unique_id = ?`, uniqueID)
}

func (r *CashierRepository) findOne(ctx context.Context, where string, arg any) (*cashier.Cashier, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, business_id, active, unique_id
		 FROM cashiers `+where,
		arg,
	)

	var c cashier.Cashier
	if err := row.Scan(&c.ID, &c.Name, &c.BusinessID, &c.Active, &c.UniqueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cashier.ErrCashierNotFound
		}
		return nil, err
	}

	return &c, nil
}

func (r *CashierRepository) List(ctx context.Context) ([]*cashier.Cashier, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, business_id, active, unique_id
		 FROM cashiers
		 ORDER BY created_at, id`,
	)
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
	res, err := r.db.ExecContext(ctx,
		`UPDATE cashiers
		 SET active = ?
		 WHERE id = ?`,
		active,
		id,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return cashier.ErrCashierNotFound
	}

	return nil
}
