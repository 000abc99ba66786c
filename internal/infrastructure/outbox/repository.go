package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
)

var ErrEventNotFound = errors.New("outbox event not found")

// OutboxEvent is a recorded domain event waiting to be relayed to the bus.
// Payload holds the JSON form of the typed payload.
type OutboxEvent struct {
	ID        string
	Type      event.Type
	Payload   []byte
	Published bool
	CreatedAt time.Time
}

type Repository interface {
	Save(ctx context.Context, evt OutboxEvent) error
	FindUnpublished(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, id string) error
}
