package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
)

// SQLiteRepository stores the outbox in the same database as the orders, so
// an order write and its event land together.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, evt OutboxEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO outbox_events (id, event_type, payload, published, created_at)
		 VALUES (?, ?, ?, 0, ?)`,
		evt.ID, string(evt.Type), evt.Payload, evt.CreatedAt,
	)
	return err
}

// FindUnpublished returns the oldest pending events first.
func (r *SQLiteRepository) FindUnpublished(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_type, payload, created_at
		 FROM outbox_events
		 WHERE published = 0
		 ORDER BY created_at, id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutboxEvent
	for rows.Next() {
		var (
			evt OutboxEvent
			typ string
		)
		if err := rows.Scan(&evt.ID, &typ, &evt.Payload, &evt.CreatedAt); err != nil {
			return nil, err
		}
		evt.Type = event.Type(typ)
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET published = 1, published_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}
