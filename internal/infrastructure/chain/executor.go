package chain

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
)

// Call is an encoded contract invocation ready to be submitted.
type Call struct {
	Target common.Address
	Data   []byte
	// ChainID is optional; zero means the executor's default chain.
	ChainID int64
}

type Submission struct {
	TransactionHash string
}

type Receipt struct {
	TransactionHash string
	BlockNumber     uint64
}

// Executor submits encoded calls and waits for them to be mined. It never
// touches payment orders; callers map a *SettlementError to a failed order.
type Executor interface {
	Submit(ctx context.Context, call Call) (Submission, error)
	AwaitConfirmation(ctx context.Context, txHash string) (Receipt, error)
}

var (
	errNotMined = errors.New("transaction not mined yet")
	ErrReverted = errors.New("transaction reverted")
)

// ConfirmPolicy bounds how long and how often confirmation is polled.
type ConfirmPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Timeout         time.Duration
}

func DefaultConfirmPolicy() ConfirmPolicy {
	return ConfirmPolicy{
		InitialInterval: time.Second,
		MaxInterval:     15 * time.Second,
		Timeout:         2 * time.Minute,
	}
}

func (p ConfirmPolicy) backOff(ctx context.Context) backoff.BackOff {
	def := DefaultConfirmPolicy()
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = def.MaxInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.InitialInterval),
		backoff.WithMaxInterval(p.MaxInterval),
		backoff.WithMaxElapsedTime(p.Timeout),
	)
	return backoff.WithContext(b, ctx)
}

// poll retries check until it returns something other than errNotMined.
func poll(ctx context.Context, p ConfirmPolicy, check func() (Receipt, error)) (Receipt, error) {
	var receipt Receipt
	err := backoff.Retry(func() error {
		r, err := check()
		if errors.Is(err, errNotMined) {
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		receipt = r
		return nil
	}, p.backOff(ctx))
	return receipt, err
}
