package event_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
)

func TestDecodePayload_RestoresTypedPayload(t *testing.T) {
	p, err := event.DecodePayload(event.OrderSettled, []byte(`{"order_id":"o-1","transaction_hash":"0xabc","block_number":7}`))
	require.NoError(t, err)

	settled, ok := p.(event.OrderSettledPayload)
	require.True(t, ok)
	require.Equal(t, "o-1", settled.OrderID)
	require.Equal(t, uint64(7), settled.BlockNumber)
}

func TestDecodePayload_UnknownType(t *testing.T) {
	_, err := event.DecodePayload("NOPE", []byte(`{}`))
	require.Error(t, err)
}
