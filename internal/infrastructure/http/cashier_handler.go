package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	businessApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/business"
	cashierApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
)

// CashierHandler serves businesses, their cashiers and the public QR lookup.
type CashierHandler struct {
	Cashiers   *cashierApp.Service
	Businesses *businessApp.Service
	// AppURL is the public payment page base used to build pay URLs.
	AppURL string
	Logger logging.Logger
}

type cashierResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	BusinessID string `json:"business"`
	Active     bool   `json:"active"`
	UniqueID   string `json:"uniqueId"`
	PayURL     string `json:"payUrl"`
}

type businessResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	PhotoURL    string `json:"photo,omitempty"`
}

func (h *CashierHandler) toCashier(c *cashier.Cashier) cashierResponse {
	return cashierResponse{
		ID:         c.ID,
		Name:       c.Name,
		BusinessID: c.BusinessID,
		Active:     c.Active,
		UniqueID:   c.UniqueID,
		PayURL:     c.PayURL(h.AppURL),
	}
}

func toBusiness(b *business.Business) businessResponse {
	return businessResponse{
		ID:          b.ID,
		Name:        b.Name,
		Owner:       b.Owner,
		PhoneNumber: b.PhoneNumber,
		PhotoURL:    b.PhotoURL,
	}
}

func (h *CashierHandler) CreateCashier(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		BusinessID string `json:"business"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.Cashiers.Create(r.Context(), req.Name, req.BusinessID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Cashier created",
		"cashier": h.toCashier(c),
	})
}

func (h *CashierHandler) ListCashiers(w http.ResponseWriter, r *http.Request) {
	cashiers, err := h.Cashiers.List(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	out := make([]cashierResponse, 0, len(cashiers))
	for _, c := range cashiers {
		out = append(out, h.toCashier(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Cashiers retrieved",
		"cashiers": out,
	})
}

func (h *CashierHandler) GetCashier(w http.ResponseWriter, r *http.Request) {
	c, err := h.Cashiers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cashier retrieved",
		"cashier": h.toCashier(c),
	})
}

func (h *CashierHandler) SetCashierActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active *bool `json:"active"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Active == nil {
		writeMessage(w, http.StatusBadRequest, "active is required")
		return
	}

	c, err := h.Cashiers.SetActive(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cashier updated",
		"cashier": h.toCashier(c),
	})
}

// CreateBusiness defaults the owner to the authenticated user.
func (h *CashierHandler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Owner       string `json:"owner"`
		PhoneNumber string `json:"phoneNumber"`
		PhotoURL    string `json:"photo"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Owner == "" {
		req.Owner = Subject(r.Context())
	}

	b, err := h.Businesses.Create(r.Context(), businessApp.CreateInput{
		Name:        req.Name,
		Owner:       req.Owner,
		PhoneNumber: req.PhoneNumber,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Business created",
		"business": toBusiness(b),
	})
}

func (h *CashierHandler) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	list, err := h.Businesses.List(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	out := make([]businessResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBusiness(b))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Businesses retrieved",
		"businesses": out,
	})
}

func (h *CashierHandler) GetBusiness(w http.ResponseWriter, r *http.Request) {
	b, err := h.Businesses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Business retrieved",
		"business": toBusiness(b),
	})
}

// LookupQR is public: it resolves a scanned QR code to the cashier's
// business so the payment page can render it.
func (h *CashierHandler) LookupQR(w http.ResponseWriter, r *http.Request) {
	page, err := h.Cashiers.Lookup(r.Context(), chi.URLParam(r, "uniqueId"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "QR code resolved",
		"qrCodeId": page.Cashier.UniqueID,
		"cashier":  page.Cashier.ID,
		"payURL":   page.Cashier.PayURL(h.AppURL),
		"business": map[string]string{
			"name": page.Business.Name,
			"logo": page.Business.PhotoURL,
		},
	})
}
