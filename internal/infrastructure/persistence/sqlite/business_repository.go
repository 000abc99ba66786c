package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
)

type BusinessRepository struct {
	db *sql.DB
}

func NewBusinessRepository(db *sql.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

func (r *BusinessRepository) Save(ctx context.Context, b *business.Business) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO businesses (id, name, owner, phone_number, photo_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone_number = excluded.phone_number,
			photo_url = excluded.photo_url`,
		b.ID,
		b.Name,
		b.Owner,
		b.PhoneNumber,
		b.PhotoURL,
		time.Now().UTC(),
	)
	return err
}

func (r *BusinessRepository) FindByID(ctx context.Context, id string) (*business.Business, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner, phone_number, photo_url
		 FROM businesses
		 WHERE id = ?`,
		id,
	)

	var b business.Business
	if err := row.Scan(&b.ID, &b.Name, &b.Owner, &b.PhoneNumber, &b.PhotoURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, business.ErrBusinessNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BusinessRepository) List(ctx context.Context) ([]*business.Business, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner, phone_number, photo_url
		 FROM businesses
		 ORDER BY created_at, id`,
	)
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
