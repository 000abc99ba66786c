package contracts

import (
	"context"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
)

type EventRecorder interface {
	Record(context.Context, event.Event) error
}

type EventPublisher interface {
	Publish(context.Context, event.Event) error
}
