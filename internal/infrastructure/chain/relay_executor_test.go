package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestRelayExecutorSubmit(t *testing.T) {
	var got relaySubmitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transactions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"transactionHash": "0xfeed"})
	}))
	defer srv.Close()

	exec := &RelayExecutor{BaseURL: srv.URL + "/", HTTPClient: srv.Client()}
	target := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	sub, err := exec.Submit(context.Background(), Call{Target: target, Data: []byte{0xca, 0xfe}, ChainID: 137})
	require.NoError(t, err)
	require.Equal(t, "0xfeed", sub.TransactionHash)
	require.Equal(t, target.Hex(), got.TargetContract)
	require.Equal(t, "0xcafe", got.Calldata)
	require.Equal(t, int64(137), got.ChainID)
}

func TestRelayExecutorSubmitErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "execution reverted"})
	}))
	defer srv.Close()

	exec := &RelayExecutor{BaseURL: srv.URL}
	_, err := exec.Submit(context.Background(), Call{})

	var settlement *SettlementError
	require.ErrorAs(t, err, &settlement)
	require.Equal(t, "submit", settlement.Op)
	require.ErrorContains(t, err, "execution reverted")
}

func TestRelayExecutorSubmitErrorWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "nonce too low"})
	}))
	defer srv.Close()

	exec := &RelayExecutor{BaseURL: srv.URL}
	_, err := exec.Submit(context.Background(), Call{})

	var settlement *SettlementError
	require.ErrorAs(t, err, &settlement)
	require.ErrorContains(t, err, "nonce too low")
}

func TestRelayExecutorSubmitBareServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	exec := &RelayExecutor{BaseURL: srv.URL}
	_, err := exec.Submit(context.Background(), Call{})

	var settlement *SettlementError
	require.ErrorAs(t, err, &settlement)
	require.ErrorContains(t, err, "502")
}

func TestRelayExecutorAwaitConfirmation(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/0xfeed", r.URL.Path)
		if polls.Add(1) < 3 {
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "pending"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "confirmed", "blockNumber": 99})
	}))
	defer srv.Close()

	exec := &RelayExecutor{BaseURL: srv.URL, Confirm: fastConfirm()}
	receipt, err := exec.AwaitConfirmation(context.Background(), "0xfeed")
	require.NoError(t, err)
	require.Equal(t, uint64(99), receipt.BlockNumber)
	require.Equal(t, int32(3), polls.Load())
}

func TestRelayExecutorAwaitConfirmationFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "failed", "error": "out of gas"})
	}))
	defer srv.Close()

	exec := &RelayExecutor{BaseURL: srv.URL, Confirm: fastConfirm()}
	_, err := exec.AwaitConfirmation(context.Background(), "0xfeed")

	var settlement *SettlementError
	require.ErrorAs(t, err, &settlement)
	require.Equal(t, "confirm", settlement.Op)
	require.Equal(t, "0xfeed", settlement.TxHash)
	require.ErrorIs(t, err, ErrReverted)
	require.ErrorContains(t, err, "out of gas")
}
