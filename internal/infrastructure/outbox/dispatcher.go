package outbox

import (
	"context"
	"time"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
)

type EventPublisher interface {
	Publish(context.Context, event.Event) error
}

type Dispatcher struct {
	Repo         Repository
	EventBus     EventPublisher
	Logger       logging.Logger
	PollInterval time.Duration
	BatchSize    int
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchOnce(ctx)
		}
	}
}

// DispatchOnce publishes one batch. Events that fail to publish stay
// unpublished and are retried on the next tick; undecodable ones are dropped.
func (d *Dispatcher) DispatchOnce(ctx context.Context) {
	events, err := d.Repo.FindUnpublished(ctx, d.BatchSize)
	if err != nil {
		d.Logger.Error("outbox poll failed", map[string]any{"error": err.Error()})
		return
	}

	for _, evt := range events {
		payload, err := event.DecodePayload(evt.Type, evt.Payload)
		if err != nil {
			d.Logger.Error("outbox event undecodable", map[string]any{
				"outbox-id": evt.ID,
				"error":     err.Error(),
			})
			_ = d.Repo.MarkPublished(ctx, evt.ID)
			continue
		}

		if err := d.EventBus.Publish(ctx, event.Event{Type: evt.Type, Payload: payload}); err != nil {
			d.Logger.Error("outbox publish failed", map[string]any{
				"outbox-id": evt.ID,
				"type":      string(evt.Type),
				"error":     err.Error(),
			})
			continue
		}

		if err := d.Repo.MarkPublished(ctx, evt.ID); err != nil {
			d.Logger.Error("outbox mark published failed", map[string]any{
				"outbox-id": evt.ID,
				"error":     err.Error(),
			})
		}
	}
}
