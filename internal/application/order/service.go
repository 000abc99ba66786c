package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/contracts"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
	domainOrder "github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/metrics"
)

// ValidationError reports malformed input rejected before touching storage.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type Service struct {
	Repo     domainOrder.Repository
	Cashiers cashier.Repository
	Recorder contracts.EventRecorder
	Logger   logging.Logger
	Metrics  *metrics.Counters
	// Decimals is the token scale amounts must fit; zero skips the check.
	Decimals int32
}

type CreateInput struct {
	Amount    decimal.Decimal
	CashierID string
	Currency  string
	Network   string
}

// UpdateInput carries a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Amount          *decimal.Decimal
	Currency        *string
	Network         *string
	Status          *domainOrder.Status
	TransactionHash *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domainOrder.PaymentOrder, error) {
	if err := s.checkAmount(in.Amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.CashierID) == "" {
		return nil, &ValidationError{Field: "cashier", Reason: "is required"}
	}

	c, err := s.Cashiers.FindByID(ctx, in.CashierID)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, cashier.ErrCashierInactive
	}

	now := time.Now().UTC()
	o := &domainOrder.PaymentOrder{
		ID:        uuid.NewString(),
		UniqueID:  domainOrder.NewUniqueID(),
		Amount:    in.Amount,
		Currency:  withDefault(in.Currency, domainOrder.DefaultCurrency),
		Network:   withDefault(in.Network, domainOrder.DefaultNetwork),
		CashierID: c.ID,
		Status:    domainOrder.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := s.Repo.SaveIfPendingBelow(ctx, o, domainOrder.MaxPendingPerCashier)
	if err != nil {
		return nil, err
	}
	if !saved {
		s.Logger.Info("pending limit reached", map[string]any{
			"cashier-id": c.ID,
			"limit":      domainOrder.MaxPendingPerCashier,
		})
		return nil, domainOrder.ErrMaxPendingPayments
	}

	s.Metrics.IncOrdersCreated()
	s.Logger.Info("payment order created", map[string]any{
		"order-id":   o.ID,
		"cashier-id": o.CashierID,
		"amount":     o.Amount.String(),
	})

	s.record(ctx, event.Event{
		Type: event.OrderCreated,
		Payload: event.OrderCreatedPayload{
			OrderID:   o.ID,
			CashierID: o.CashierID,
			Amount:    o.Amount.String(),
		},
	})

	return o, nil
}

func (s *Service) checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if s.Decimals > 0 && !amount.Equal(amount.Truncate(s.Decimals)) {
		return &ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("has more than %d decimal places", s.Decimals),
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*domainOrder.PaymentOrder, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domainOrder.PaymentOrder, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domainOrder.PaymentOrder, error) {
	o, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, domainOrder.ErrTerminalState
	}

	if in.Amount != nil {
		if err := s.checkAmount(*in.Amount); err != nil {
			return nil, err
		}
		o.Amount = *in.Amount
	}
	if in.Currency != nil {
		o.Currency = *in.Currency
	}
	if in.Network != nil {
		o.Network = *in.Network
	}
	o.UpdatedAt = time.Now().UTC()

	if in.Status != nil && *in.Status != domainOrder.StatusPending {
		hash := ""
		if in.TransactionHash != nil {
			hash = *in.TransactionHash
		}
		if err := o.Transition(*in.Status, hash); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.Update(ctx, o); err != nil {
		return nil, err
	}

	if o.Status.Terminal() {
		s.recordTransition(ctx, o)
	}

	return o, nil
}

// Complete and Fail are the settlement-side transitions.
func (s *Service) Complete(ctx context.Context, id, txHash string) (*domainOrder.PaymentOrder, error) {
	status := domainOrder.StatusCompleted
	return s.Update(ctx, id, UpdateInput{Status: &status, TransactionHash: &txHash})
}

func (s *Service) Fail(ctx context.Context, id string) (*domainOrder.PaymentOrder, error) {
	status := domainOrder.StatusFailed
	return s.Update(ctx, id, UpdateInput{Status: &status})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) recordTransition(ctx context.Context, o *domainOrder.PaymentOrder) {
	typ := event.OrderCompleted
	if o.Status == domainOrder.StatusFailed {
		typ = event.OrderFailed
	}

	s.Logger.Info("payment order settled", map[string]any{
		"order-id": o.ID,
		"status":   string(o.Status),
		"tx-hash":  o.TransactionHash,
	})

	s.record(ctx, event.Event{
		Type: typ,
		Payload: event.OrderStatusPayload{
			OrderID:         o.ID,
			Status:          string(o.Status),
			TransactionHash: o.TransactionHash,
		},
	})
}

// record never fails the caller; the order change is already committed.
func (s *Service) record(ctx context.Context, evt event.Event) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.Record(ctx, evt); err != nil {
		s.Logger.Error("event record failed", map[string]any{
			"type":  string(evt.Type),
			"error": err.Error(),
		})
	}
}

func withDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
