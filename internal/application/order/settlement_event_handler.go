package order

import (
	"context"
	"errors"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
)

// SettlementEventHandler turns settlement outcomes into order transitions.
type SettlementEventHandler struct {
	Service *Service
}

func (h *SettlementEventHandler) Handle(ctx context.Context, evt event.Event) error {
	switch evt.Type {
	case event.OrderSettled:
		payload, ok := evt.Payload.(event.OrderSettledPayload)
		if !ok {
			return errors.New("invalid payload for OrderSettled")
		}
		_, err := h.Service.Complete(ctx, payload.OrderID, payload.TransactionHash)
		return err

	case event.OrderSettlementFailed:
		payload, ok := evt.Payload.(event.OrderSettlementFailedPayload)
		if !ok {
			return errors.New("invalid payload for OrderSettlementFailed")
		}
		_, err := h.Service.Fail(ctx, payload.OrderID)
		return err
	}

	return nil
}
