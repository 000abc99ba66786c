package paymentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              string          `json:"id"`
	UniqueID        string          `json:"uniqueId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Network         string          `json:"network"`
	CashierID       string          `json:"cashier"`
	Status          string          `json:"status"`
	TransactionHash string          `json:"transactionHash,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type CreateOrderRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency,omitempty"`
	Network   string          `json:"network,omitempty"`
	CashierID string          `json:"cashier"`
}

// UpdateOrderRequest is a partial update; nil fields are not sent.
type UpdateOrderRequest struct {
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	Currency        *string          `json:"currency,omitempty"`
	Network         *string          `json:"network,omitempty"`
	Status          *string          `json:"status,omitempty"`
	TransactionHash *string          `json:"transactionHash,omitempty"`
}

// MarshalJSON sends the amount as a JSON number, which is what the backend
// expects; decimal.Decimal quotes it by default.
func (r CreateOrderRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount    json.Number `json:"amount"`
		Currency  string      `json:"currency,omitempty"`
		Network   string      `json:"network,omitempty"`
		CashierID string      `json:"cashier"`
	}{json.Number(r.Amount.String()), r.Currency, r.Network, r.CashierID})
}

func (r UpdateOrderRequest) MarshalJSON() ([]byte, error) {
	var amount *json.Number
	if r.Amount != nil {
		n := json.Number(r.Amount.String())
		amount = &n
	}
	return json.Marshal(struct {
		Amount          *json.Number `json:"amount,omitempty"`
		Currency        *string      `json:"currency,omitempty"`
		Network         *string      `json:"network,omitempty"`
		Status          *string      `json:"status,omitempty"`
		TransactionHash *string      `json:"transactionHash,omitempty"`
	}{amount, r.Currency, r.Network, r.Status, r.TransactionHash})
}

type orderEnvelope struct {
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

type ordersEnvelope struct {
	Message string   `json:"message"`
	Orders  []*Order `json:"orders"`
}

// Client is a thin façade over the payment-order resource. The server owns
// every business rule; the client only refuses obviously empty creates.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func (c *Client) Create(ctx context.Context, in CreateOrderRequest) (*Order, error) {
	if !in.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(in.CashierID) == "" {
		return nil, &ValidationError{Field: "cashier", Reason: "is required"}
	}

	var out orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/business/payment", in, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) List(ctx context.Context) ([]*Order, error) {
	var out ordersEnvelope
	if err := c.do(ctx, http.MethodGet, "/business/payment", nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) Get(ctx context.Context, id string) (*Order, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodGet, "/business/payment/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) Update(ctx context.Context, id string, in UpdateOrderRequest) (*Order, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodPut, "/business/payment/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return out.Order, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/business/payment/"+url.PathEscape(id), nil, nil)
}

type Transaction struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"blockNumber"`
}

type Execution struct {
	Message     string       `json:"message"`
	Order       *Order       `json:"payment"`
	Transaction *Transaction `json:"transaction"`
}

// Execute asks the server to settle a pending order on chain and returns the
// order in its final state.
func (c *Client) Execute(ctx context.Context, id string) (*Execution, error) {
	var out struct {
		Status string    `json:"status"`
		Data   Execution `json:"data"`
	}
	body := map[string]string{"paymentId": id}
	if err := c.do(ctx, http.MethodPost, "/api/payments/execute", body, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &RequestError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	return DecodeResponse(resp, out)
}

// DecodeResponse decodes a 2xx body into out, or turns the {"error": ...}
// envelope of any other answer into a *RequestError.
func DecodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &RequestError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil && envelope.Error != "" {
			reqErr.Message = envelope.Error
		}
		return reqErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RequestError{Status: resp.StatusCode, Message: "malformed response body", Err: err}
	}
	return nil
}
