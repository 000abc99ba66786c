package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// RelayExecutor hands encoded calls to a backend relay that signs and
// submits them on the caller's behalf.
type RelayExecutor struct {
	BaseURL    string
	HTTPClient *http.Client
	Confirm    ConfirmPolicy
}

type relaySubmitRequest struct {
	TargetContract string `json:"targetContract"`
	Calldata       string `json:"calldata"`
	ChainID        int64  `json:"chainId,omitempty"`
}

type relaySubmitResponse struct {
	TransactionHash string `json:"transactionHash"`
	Error           string `json:"error"`
}

type relayStatusResponse struct {
	Status      string `json:"status"`
	BlockNumber uint64 `json:"blockNumber"`
	Error       string `json:"error"`
}

const (
	relayConfirmed = "confirmed"
	relayPending   = "pending"
	relayFailed    = "failed"
)

func (e *RelayExecutor) client() *http.Client {
	if e.HTTPClient != nil {
		return e.HTTPClient
	}
	return http.DefaultClient
}

func (e *RelayExecutor) Submit(ctx context.Context, call Call) (Submission, error) {
	body, err := json.Marshal(relaySubmitRequest{
		TargetContract: call.Target.Hex(),
		Calldata:       hexutil.Encode(call.Data),
		ChainID:        call.ChainID,
	})
	if err != nil {
		return Submission{}, &SettlementError{Op: "submit", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url("/transactions"), bytes.NewReader(body))
	if err != nil {
		return Submission{}, &SettlementError{Op: "submit", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var out relaySubmitResponse
	if err := e.do(req, &out); err != nil {
		return Submission{}, &SettlementError{Op: "submit", Err: err}
	}
	if out.Error != "" {
		return Submission{}, &SettlementError{Op: "submit", Err: errors.New(out.Error)}
	}
	if out.TransactionHash == "" {
		return Submission{}, &SettlementError{Op: "submit", Err: errors.New("relay returned no transaction hash")}
	}

	return Submission{TransactionHash: out.TransactionHash}, nil
}

func (e *RelayExecutor) AwaitConfirmation(ctx context.Context, txHash string) (Receipt, error) {
	receipt, err := poll(ctx, e.Confirm, func() (Receipt, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url("/transactions/"+txHash), nil)
		if err != nil {
			return Receipt{}, err
		}

		var out relayStatusResponse
		if err := e.do(req, &out); err != nil {
			return Receipt{}, err
		}

		switch out.Status {
		case relayConfirmed:
			return Receipt{TransactionHash: txHash, BlockNumber: out.BlockNumber}, nil
		case relayPending, "":
			return Receipt{}, errNotMined
		case relayFailed:
			if out.Error != "" {
				return Receipt{}, fmt.Errorf("%w: %s", ErrReverted, out.Error)
			}
			return Receipt{}, ErrReverted
		}
		return Receipt{}, fmt.Errorf("unknown relay status %q", out.Status)
	})
	if err != nil {
		return Receipt{}, &SettlementError{Op: "confirm", TxHash: txHash, Err: err}
	}
	return receipt, nil
}

// do decodes the JSON body for any status; a non-2xx without an error
// envelope becomes an error carrying the status code.
func (e *RelayExecutor) do(req *http.Request, out any) error {
	resp, err := e.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	decodeErr := json.NewDecoder(resp.Body).Decode(out)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return decodeErr
	}

	var envelope struct {
		Error string `json:"error"`
	}
	if b, err := json.Marshal(out); err == nil {
		_ = json.Unmarshal(b, &envelope)
	}
	if envelope.Error != "" {
		return errors.New(envelope.Error)
	}
	return fmt.Errorf("relay returned status %d", resp.StatusCode)
}

func (e *RelayExecutor) url(path string) string {
	return strings.TrimRight(e.BaseURL, "/") + path
}
