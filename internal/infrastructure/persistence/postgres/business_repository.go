package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
)

type BusinessRepository struct {
	pool *pgxpool.Pool
}

func NewBusinessRepository(pool *pgxpool.Pool) *BusinessRepository {
	return &BusinessRepository{pool: pool}
}

func (r *BusinessRepository) Save(ctx context.Context, b *business.Business) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO businesses (id, name, owner, phone_number, photo_url)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			phone_number = EXCLUDED.phone_number,
			photo_url = EXCLUDED.photo_url`,
		b.ID, b.Name, b.Owner, b.PhoneNumber, b.PhotoURL,
	)
	return err
}

func (r *BusinessRepository) FindByID(ctx context.Context, id string) (*business.Business, error) {
	var b business.Business
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, owner, phone_number, photo_url FROM businesses WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Owner, &b.PhoneNumber, &b.PhotoURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, business.ErrBusinessNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepository) List(ctx context.Context) ([]*business.Business, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, owner, phone_number, photo_url FROM businesses ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*business.Business
	for rows.Next() {
		var b business.Business
		if err := rows.Scan(&b.ID, &b.Name, &b.Owner, &b.PhoneNumber, &b.PhotoURL); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
