package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/circle"
)

// WalletProvider is the slice of the Circle client the proxy routes use.
type WalletProvider interface {
	CreateUser(ctx context.Context, userID string) error
	CreateUserToken(ctx context.Context, userID string) (circle.UserToken, error)
	InitializeUser(ctx context.Context, userToken string) (string, error)
	ListWallets(ctx context.Context, userID string) ([]circle.Wallet, error)
	CreateTransfer(ctx context.Context, userToken string, t circle.Transfer) (string, error)
	GetChallenge(ctx context.Context, userToken, challengeID string) (*circle.Challenge, error)
	GetTransaction(ctx context.Context, userToken, transactionID string) (*circle.Transaction, error)
	RequestTestTokens(ctx context.Context, address string) error
}

// CircleHandler proxies wallet provider calls so the API key stays on the
// server. Every answer is {"data": ...} or {"error": ...}.
type CircleHandler struct {
	Wallets WalletProvider
	Logger  logging.Logger
}

func writeData(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, map[string]any{"data": v})
}

func (h *CircleHandler) upstream(w http.ResponseWriter, msg string, err error) {
	h.Logger.Error(msg, map[string]any{"error": err.Error()})
	writeMessage(w, http.StatusInternalServerError, msg)
}

func (h *CircleHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeMessage(w, http.StatusBadRequest, "User ID is required")
		return
	}

	err := h.Wallets.CreateUser(r.Context(), req.UserID)
	var apiErr *circle.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		err = nil
	}
	if err != nil {
		h.upstream(w, "Failed to setup Circle wallet", err)
		return
	}

	h.Logger.Info("wallet user created", map[string]any{"user-id": req.UserID})
	writeData(w, map[string]string{"userId": req.UserID})
}

func (h *CircleHandler) CreateUserToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.Wallets.CreateUserToken(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.upstream(w, "Failed to setup Circle wallet", err)
		return
	}
	writeData(w, token)
}

func (h *CircleHandler) PinChallenge(w http.ResponseWriter, r *http.Request) {
	userToken := r.Header.Get("X-User-Token")
	if userToken == "" {
		writeMessage(w, http.StatusUnauthorized, "User token is required")
		return
	}

	challengeID, err := h.Wallets.InitializeUser(r.Context(), userToken)
	if err != nil {
		h.upstream(w, "Failed to setup Circle wallet", err)
		return
	}
	writeData(w, map[string]string{"challengeId": challengeID})
}

func (h *CircleHandler) WalletStatus(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, "User ID is required")
		return
	}

	wallets, err := h.Wallets.ListWallets(r.Context(), userID)
	if err != nil {
		h.upstream(w, "Failed to get wallet status", err)
		return
	}
	if wallets == nil {
		wallets = []circle.Wallet{}
	}
	writeData(w, map[string]any{"wallets": wallets})
}

func (h *CircleHandler) RequestTokens(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Address == "" {
		writeMessage(w, http.StatusBadRequest, "Address is required")
		return
	}

	if err := h.Wallets.RequestTestTokens(r.Context(), req.Address); err != nil {
		h.upstream(w, "Failed to request test tokens", err)
		return
	}
	writeData(w, map[string]string{"address": req.Address})
}

// CreateTransaction mints a fresh user token and starts a transfer. The
// token travels back so the client can answer the challenge.
func (h *CircleHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID             string `json:"userId"`
		WalletID           string `json:"walletId"`
		TokenID            string `json:"tokenId"`
		DestinationAddress string `json:"destinationAddress"`
		Amount             string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" || req.WalletID == "" || req.DestinationAddress == "" || req.Amount == "" {
		writeMessage(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	token, err := h.Wallets.CreateUserToken(r.Context(), req.UserID)
	if err != nil {
		h.upstream(w, "Failed to create transaction", err)
		return
	}

	challengeID, err := h.Wallets.CreateTransfer(r.Context(), token.UserToken, circle.Transfer{
		UserID:             req.UserID,
		WalletID:           req.WalletID,
		TokenID:            req.TokenID,
		DestinationAddress: req.DestinationAddress,
		Amount:             req.Amount,
	})
	if err != nil {
		h.upstream(w, "Failed to create transaction", err)
		return
	}

	h.Logger.Info("wallet transfer started", map[string]any{
		"user-id":      req.UserID,
		"wallet-id":    req.WalletID,
		"challenge-id": challengeID,
	})
	writeData(w, map[string]string{
		"challengeId":   challengeID,
		"userToken":     token.UserToken,
		"encryptionKey": token.EncryptionKey,
	})
}

func (h *CircleHandler) ChallengeStatus(w http.ResponseWriter, r *http.Request) {
	userToken := r.Header.Get("X-User-Token")
	challengeID := r.URL.Query().Get("challengeId")
	if userToken == "" || challengeID == "" {
		writeMessage(w, http.StatusBadRequest, "Challenge ID and user token are required")
		return
	}

	c, err := h.Wallets.GetChallenge(r.Context(), userToken, challengeID)
	if err != nil {
		h.upstream(w, "Failed to get challenge status", err)
		return
	}
	writeData(w, map[string]string{
		"status":       c.Status,
		"errorMessage": c.ErrorMessage,
	})
}

func (h *CircleHandler) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	transactionID := r.URL.Query().Get("transactionId")
	userID := r.URL.Query().Get("userId")
	if transactionID == "" || userID == "" {
		writeMessage(w, http.StatusBadRequest, "Transaction ID and User ID are required")
		return
	}

	token, err := h.Wallets.CreateUserToken(r.Context(), userID)
	if err != nil {
		h.upstream(w, "Failed to get transaction status", err)
		return
	}

	tx, err := h.Wallets.GetTransaction(r.Context(), token.UserToken, transactionID)
	if err != nil {
		h.upstream(w, "Failed to get transaction status", err)
		return
	}
	writeData(w, tx)
}
