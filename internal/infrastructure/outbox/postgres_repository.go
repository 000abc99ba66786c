package outbox

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, evt OutboxEvent) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO outbox_events (id, event_type, payload, published, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
	`,
		evt.ID,
		string(evt.Type),
		evt.Payload,
		evt.CreatedAt,
	)
	return err
}

func (r *PostgresRepository) FindUnpublished(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_type, payload, published, created_at
		FROM outbox_events
		WHERE published = FALSE
		ORDER BY created_at, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []OutboxEvent
	for rows.Next() {
		var evt OutboxEvent
		var typ string
		if err := rows.Scan(&evt.ID, &typ, &evt.Payload, &evt.Published, &evt.CreatedAt); err != nil {
			return nil, err
		}
		evt.Type = event.Type(typ)
		events = append(events, evt)
	}
	return events, rows.Err()
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE outbox_events SET published = TRUE, published_at = now() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
