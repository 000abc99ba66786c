package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	orderApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
)

type OrderHandler struct {
	Service *orderApp.Service
	Logger  logging.Logger
}

type CreateOrderRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Network   string          `json:"network"`
	CashierID string          `json:"cashier"`
}

type UpdateOrderRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	Currency        *string          `json:"currency"`
	Network         *string          `json:"network"`
	Status          *string          `json:"status"`
	TransactionHash *string          `json:"transactionHash"`
}

type OrderResponse struct {
	ID              string      `json:"id"`
	UniqueID        string      `json:"uniqueId"`
	Amount          json.Number `json:"amount"`
	Currency        string      `json:"currency"`
	Network         string      `json:"network"`
	CashierID       string      `json:"cashier"`
	Status          string      `json:"status"`
	TransactionHash string      `json:"transactionHash,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func toOrderResponse(o *order.PaymentOrder) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		UniqueID:        o.UniqueID,
		Amount:          json.Number(o.Amount.String()),
		Currency:        o.Currency,
		Network:         o.Network,
		CashierID:       o.CashierID,
		Status:          string(o.Status),
		TransactionHash: o.TransactionHash,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.Service.Create(r.Context(), orderApp.CreateInput{
		Amount:    req.Amount,
		CashierID: req.CashierID,
		Currency:  req.Currency,
		Network:   req.Network,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Payment order created",
		"order":   toOrderResponse(o),
	})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment orders retrieved",
		"orders":  out,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment order retrieved",
		"order":   toOrderResponse(o),
	})
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := orderApp.UpdateInput{
		Amount:          req.Amount,
		Currency:        req.Currency,
		Network:         req.Network,
		TransactionHash: req.TransactionHash,
	}
	if req.Status != nil {
		status := order.Status(*req.Status)
		in.Status = &status
	}

	o, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Payment order updated",
		"order":   toOrderResponse(o),
	})
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment order deleted"})
}
