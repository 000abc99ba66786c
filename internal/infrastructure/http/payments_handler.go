package httpapi

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	orderApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/settlement"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/chain"
)

type Settler interface {
	Execute(ctx context.Context, orderID string) (*settlement.Result, error)
}

// ContractReader runs the payment processor's view functions.
type ContractReader interface {
	GetOrder(ctx context.Context, unique string) (*chain.OnchainOrder, error)
	CalculateFee(ctx context.Context, amount string, decimals int32) (*big.Int, error)
}

// PaymentsHandler serves the consumer-facing /api/payments routes.
type PaymentsHandler struct {
	Orders   *orderApp.Service
	Settler  Settler
	Reader   ContractReader
	Decimals int32
	Logger   logging.Logger
}

type createPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	CashierID string          `json:"cashierId"`
	Currency  string          `json:"currency"`
	Network   string          `json:"network"`
}

type executePaymentRequest struct {
	PaymentID string `json:"paymentId"`
}

type transactionResponse struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"blockNumber"`
}

type onchainOrderResponse struct {
	OrderID string `json:"orderId"`
	Token   string `json:"token"`
	Amount  string `json:"amount"`
	Paid    bool   `json:"paid"`
	Payer   string `json:"payer"`
	Fee     string `json:"fee"`
}

func success(w http.ResponseWriter, status int, data map[string]any) {
	writeJSON(w, status, map[string]any{"status": "success", "data": data})
}

func (h *PaymentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() || strings.TrimSpace(req.CashierID) == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	o, err := h.Orders.Create(r.Context(), orderApp.CreateInput{
		Amount:    req.Amount,
		CashierID: req.CashierID,
		Currency:  req.Currency,
		Network:   req.Network,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	success(w, http.StatusCreated, map[string]any{
		"message": "Payment created successfully",
		"payment": toOrderResponse(o),
	})
}

func (h *PaymentsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		writeMessage(w, http.StatusBadRequest, "Payment ID is required")
		return
	}
	if h.Settler == nil {
		writeMessage(w, http.StatusServiceUnavailable, "settlement not configured")
		return
	}

	res, err := h.Settler.Execute(r.Context(), req.PaymentID)
	if err != nil {
		h.fail(w, err)
		return
	}

	o, err := h.Orders.Get(r.Context(), req.PaymentID)
	if err != nil {
		h.fail(w, err)
		return
	}

	success(w, http.StatusOK, map[string]any{
		"message": "Payment executed successfully",
		"payment": toOrderResponse(o),
		"transaction": transactionResponse{
			Hash:        res.TransactionHash,
			BlockNumber: res.BlockNumber,
		},
	})
}

// Onchain reads the order straight from the contract, keyed by the
// order's unique id.
func (h *PaymentsHandler) Onchain(w http.ResponseWriter, r *http.Request) {
	if h.Reader == nil {
		writeMessage(w, http.StatusServiceUnavailable, "chain reader not configured")
		return
	}

	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	onchain, err := h.Reader.GetOrder(r.Context(), o.UniqueID)
	if err != nil {
		h.Logger.Error("onchain lookup failed", map[string]any{
			"order-id": o.ID,
			"error":    err.Error(),
		})
		writeMessage(w, http.StatusBadGateway, "Failed to read payment from chain")
		return
	}

	writeJSON(w, http.StatusOK, onchainOrderResponse{
		OrderID: o.ID,
		Token:   onchain.Token.Hex(),
		Amount:  chain.FormatUnits(onchain.Amount, h.Decimals),
		Paid:    onchain.Paid,
		Payer:   onchain.Payer.Hex(),
		Fee:     chain.FormatUnits(onchain.Fee, h.Decimals),
	})
}

func (h *PaymentsHandler) Fee(w http.ResponseWriter, r *http.Request) {
	if h.Reader == nil {
		writeMessage(w, http.StatusServiceUnavailable, "chain reader not configured")
		return
	}

	amount := r.URL.Query().Get("amount")
	if _, err := chain.ScaleAmount(amount, h.Decimals); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	fee, err := h.Reader.CalculateFee(r.Context(), amount, h.Decimals)
	if err != nil {
		h.Logger.Error("fee lookup failed", map[string]any{
			"amount": amount,
			"error":  err.Error(),
		})
		writeMessage(w, http.StatusBadGateway, "Failed to calculate fee")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"amount": amount,
		"fee":    chain.FormatUnits(fee, h.Decimals),
	})
}

// fail keeps the capitalised messages the payment page expects.
func (h *PaymentsHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cashier.ErrCashierNotFound):
		writeMessage(w, http.StatusNotFound, "Cashier not found")
	case errors.Is(err, order.ErrOrderNotFound):
		writeMessage(w, http.StatusNotFound, "Payment not found")
	default:
		writeError(w, h.Logger, err)
	}
}
