package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/onboarding"
	orderApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/settlement"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/chain"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeError maps domain errors to a status and a message safe to show.
// Anything unknown is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, logger logging.Logger, err error) {
	var (
		validation  *orderApp.ValidationError
		onbValidate *onboarding.ValidationError
		invalidAmnt *chain.InvalidAmountError
		status      int
		msg         = err.Error()
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &onbValidate), errors.As(err, &invalidAmnt):
		status = http.StatusBadRequest
	case errors.Is(err, order.ErrMaxPendingPayments):
		status, msg = http.StatusBadRequest, "Maximum pending payments limit reached for this cashier"
	case errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrMissingTxHash),
		errors.Is(err, cashier.ErrInvalidCashier),
		errors.Is(err, business.ErrInvalidBusiness):
		status = http.StatusBadRequest
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, cashier.ErrCashierNotFound),
		errors.Is(err, business.ErrBusinessNotFound):
		status = http.StatusNotFound
	case errors.Is(err, order.ErrTerminalState),
		errors.Is(err, cashier.ErrCashierInactive),
		errors.Is(err, settlement.ErrSettlementInProgress):
		status = http.StatusConflict
	case errors.Is(err, settlement.ErrOrderNotPending):
		status, msg = http.StatusBadRequest, "Payment is not in pending status"
	case errors.Is(err, settlement.ErrSettlementInterrupted):
		status, msg = http.StatusServiceUnavailable, "Payment settlement interrupted, retry later"
	case errors.Is(err, settlement.ErrExecutionFailed):
		status, msg = http.StatusInternalServerError, "Failed to execute payment"
	default:
		logger.Error("request failed", map[string]any{"error": err.Error()})
		status, msg = http.StatusInternalServerError, "internal server error"
	}

	writeMessage(w, status, msg)
}
