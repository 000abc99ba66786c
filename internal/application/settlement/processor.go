package settlement

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/contracts"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/metrics"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/chain"
)

var (
	ErrOrderNotPending      = errors.New("payment order is not pending")
	ErrSettlementInProgress = errors.New("payment order is already being settled")
	// ErrExecutionFailed is all a caller learns about a failed settlement.
	ErrExecutionFailed = errors.New("failed to execute payment")
	// ErrSettlementInterrupted means a submitted transaction was abandoned
	// before confirmation; the order is left pending.
	ErrSettlementInterrupted = errors.New("payment settlement interrupted")
)

// DefaultTimeout bounds submit plus confirmation when Processor.Timeout is zero.
const DefaultTimeout = 3 * time.Minute

// Processor registers a pending order on the PaymentProcessor contract and
// reports the outcome as a settlement event. It never writes orders itself.
type Processor struct {
	Orders    order.Repository
	Builder   *chain.CallBuilder
	Executor  chain.Executor
	Publisher contracts.EventPublisher
	Logger    logging.Logger
	Metrics   *metrics.Counters

	Contract common.Address
	Token    common.Address
	Decimals int32
	ChainID  int64
	Timeout  time.Duration

	inflight sync.Map
}

type Result struct {
	OrderID         string
	TransactionHash string
	BlockNumber     uint64
}

// Execute settles one pending order. The chain work runs detached from ctx,
// bounded by Timeout: a caller that goes away only loses the result.
func (p *Processor) Execute(ctx context.Context, orderID string) (*Result, error) {
	if _, busy := p.inflight.LoadOrStore(orderID, struct{}{}); busy {
		return nil, ErrSettlementInProgress
	}
	defer p.inflight.Delete(orderID)

	o, err := p.Orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending {
		return nil, ErrOrderNotPending
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout())
	defer cancel()

	p.Logger.Info("executing payment", map[string]any{
		"order-id":  o.ID,
		"unique-id": o.UniqueID,
		"amount":    o.Amount.String(),
	})

	p.Metrics.IncProcessed()

	receipt, submitted, err := p.settle(ctx, o)
	if err != nil {
		p.Metrics.IncFailed()
		p.Logger.Error("payment execution failed", map[string]any{
			"order-id": o.ID,
			"tx-hash":  submitted,
			"error":    err.Error(),
		})

		if submitted != "" && errors.Is(err, context.Canceled) {
			// the transaction is out; its fate is unknown, so the order stays pending
			return nil, ErrSettlementInterrupted
		}

		if pubErr := p.Publisher.Publish(ctx, event.Event{
			Type: event.OrderSettlementFailed,
			Payload: event.OrderSettlementFailedPayload{
				OrderID: o.ID,
				Reason:  err.Error(),
			},
		}); pubErr != nil {
			p.Logger.Error("settlement failure not applied", map[string]any{
				"order-id": o.ID,
				"error":    pubErr.Error(),
			})
		}
		return nil, ErrExecutionFailed
	}

	p.Metrics.IncSucceeded()
	p.Logger.Info("payment executed", map[string]any{
		"order-id": o.ID,
		"tx-hash":  receipt.TransactionHash,
		"block":    receipt.BlockNumber,
	})

	err = p.Publisher.Publish(ctx, event.Event{
		Type: event.OrderSettled,
		Payload: event.OrderSettledPayload{
			OrderID:         o.ID,
			TransactionHash: receipt.TransactionHash,
			BlockNumber:     receipt.BlockNumber,
		},
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		OrderID:         o.ID,
		TransactionHash: receipt.TransactionHash,
		BlockNumber:     receipt.BlockNumber,
	}, nil
}

func (p *Processor) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return DefaultTimeout
}

// settle also returns the hash once the transaction has been submitted.
func (p *Processor) settle(ctx context.Context, o *order.PaymentOrder) (chain.Receipt, string, error) {
	data, err := p.Builder.EncodeCreateOrder(chain.OrderID(o.UniqueID), p.Token, o.Amount.String(), p.Decimals)
	if err != nil {
		return chain.Receipt{}, "", err
	}

	sub, err := p.Executor.Submit(ctx, chain.Call{
		Target:  p.Contract,
		Data:    data,
		ChainID: p.ChainID,
	})
	if err != nil {
		return chain.Receipt{}, "", err
	}

	receipt, err := p.Executor.AwaitConfirmation(ctx, sub.TransactionHash)
	return receipt, sub.TransactionHash, err
}

// Handle settles orders as they are created. Failures are already recorded on
// the order, so only lookup errors are returned for redelivery.
func (p *Processor) Handle(ctx context.Context, evt event.Event) error {
	if evt.Type != event.OrderCreated {
		return nil
	}

	payload, ok := evt.Payload.(event.OrderCreatedPayload)
	if !ok {
		return errors.New("invalid payload for OrderCreated")
	}

	_, err := p.Execute(ctx, payload.OrderID)
	switch {
	case err == nil,
		errors.Is(err, ErrExecutionFailed),
		errors.Is(err, ErrOrderNotPending),
		errors.Is(err, ErrSettlementInterrupted),
		errors.Is(err, ErrSettlementInProgress):
		return nil
	}
	return err
}
