package event

import (
	"encoding/json"
	"fmt"
)

type OrderCreatedPayload struct {
	OrderID   string `json:"order_id"`
	CashierID string `json:"cashier_id"`
	Amount    string `json:"amount"`
}

type OrderSettledPayload struct {
	OrderID         string `json:"order_id"`
	TransactionHash string `json:"transaction_hash"`
	BlockNumber     uint64 `json:"block_number"`
}

type OrderSettlementFailedPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

type OrderStatusPayload struct {
	OrderID         string `json:"order_id"`
	Status          string `json:"status"`
	TransactionHash string `json:"transaction_hash,omitempty"`
}

// DecodePayload restores the typed payload of a serialized event.
func DecodePayload(t Type, data []byte) (any, error) {
	switch t {
	case OrderCreated:
		return decode[OrderCreatedPayload](data)
	case OrderSettled:
		return decode[OrderSettledPayload](data)
	case OrderSettlementFailed:
		return decode[OrderSettlementFailedPayload](data)
	case OrderCompleted, OrderFailed:
		return decode[OrderStatusPayload](data)
	}
	return nil, fmt.Errorf("unknown event type %q", t)
}

func decode[T any](data []byte) (any, error) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p, nil
}
