package eventbus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/eventbus"
)

func TestInMemoryBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	var seen []string

	bus.Subscribe(event.OrderCreated, func(context.Context, event.Event) error {
		seen = append(seen, "first")
		return nil
	})
	bus.Subscribe(event.OrderCreated, func(context.Context, event.Event) error {
		seen = append(seen, "second")
		return nil
	})
	bus.Subscribe(event.OrderFailed, func(context.Context, event.Event) error {
		seen = append(seen, "other")
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), event.Event{Type: event.OrderCreated}))
	require.Equal(t, []string{"first", "second"}, seen)
}

func TestInMemoryBus_StopsOnHandlerError(t *testing.T) {
	bus := eventbus.NewInMemoryBus()
	called := false

	bus.Subscribe(event.OrderSettled, func(context.Context, event.Event) error {
		return errors.New("boom")
	})
	bus.Subscribe(event.OrderSettled, func(context.Context, event.Event) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), event.Event{Type: event.OrderSettled})
	require.EqualError(t, err, "boom")
	require.False(t, called)
}
