package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Reader runs the contract's view functions.
type Reader struct {
	Client    RPCClient
	Builder   *CallBuilder
	Processor common.Address
}

func (r *Reader) GetOrder(ctx context.Context, unique string) (*OnchainOrder, error) {
	data, err := r.Builder.EncodeGetOrder(OrderID(unique))
	if err != nil {
		return nil, err
	}

	out, err := r.call(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("getOrder: %w", err)
	}
	return r.Builder.DecodeGetOrder(out)
}

func (r *Reader) CalculateFee(ctx context.Context, amount string, decimals int32) (*big.Int, error) {
	data, err := r.Builder.EncodeCalculateFee(amount, decimals)
	if err != nil {
		return nil, err
	}

	out, err := r.call(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("calculateFee: %w", err)
	}
	return r.Builder.DecodeCalculateFee(out)
}

func (r *Reader) call(ctx context.Context, data []byte) ([]byte, error) {
	to := r.Processor
	return r.Client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}
