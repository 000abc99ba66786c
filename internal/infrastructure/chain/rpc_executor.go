package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// RPCClient is the part of *ethclient.Client the executors need.
type RPCClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// RPCExecutor signs transactions with a locally held key and sends them
// straight to a chain RPC endpoint.
type RPCExecutor struct {
	Client   RPCClient
	Key      *ecdsa.PrivateKey
	GasLimit uint64
	Confirm  ConfirmPolicy

	// nonces are handed out locally so back-to-back submits do not collide
	mu        sync.Mutex
	nextNonce *uint64
}

func DialRPC(ctx context.Context, url string) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return client, nil
}

func ParseSignerKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signer key: %w", err)
	}
	return key, nil
}

func (e *RPCExecutor) From() common.Address {
	return crypto.PubkeyToAddress(e.Key.PublicKey)
}

func (e *RPCExecutor) Submit(ctx context.Context, call Call) (Submission, error) {
	tx, err := e.buildTx(ctx, call)
	if err != nil {
		return Submission{}, &SettlementError{Op: "submit", Err: err}
	}

	if err := e.Client.SendTransaction(ctx, tx); err != nil {
		e.resetNonce()
		return Submission{}, &SettlementError{Op: "submit", TxHash: tx.Hash().Hex(), Err: err}
	}

	return Submission{TransactionHash: tx.Hash().Hex()}, nil
}

func (e *RPCExecutor) buildTx(ctx context.Context, call Call) (*types.Transaction, error) {
	chainID, err := e.Client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("chain id: %w", err)
	}
	if call.ChainID != 0 && chainID.Int64() != call.ChainID {
		return nil, fmt.Errorf("rpc serves chain %s, call targets %d", chainID, call.ChainID)
	}

	nonce, err := e.takeNonce(ctx)
	if err != nil {
		return nil, err
	}

	tip, err := e.Client.SuggestGasTipCap(ctx)
	if err != nil {
		e.resetNonce()
		return nil, fmt.Errorf("gas tip: %w", err)
	}
	head, err := e.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		e.resetNonce()
		return nil, fmt.Errorf("latest header: %w", err)
	}

	baseFee := head.BaseFee
	if baseFee == nil {
		baseFee = new(big.Int)
	}
	feeCap := new(big.Int).Add(tip, new(big.Int).Mul(baseFee, big.NewInt(2)))
	to := call.Target

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       e.GasLimit,
		To:        &to,
		Value:     big.NewInt(0),
		Data:      call.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), e.Key)
	if err != nil {
		e.resetNonce()
		return nil, fmt.Errorf("sign: %w", err)
	}
	return signed, nil
}

func (e *RPCExecutor) takeNonce(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.nextNonce == nil {
		n, err := e.Client.PendingNonceAt(ctx, e.From())
		if err != nil {
			return 0, fmt.Errorf("pending nonce: %w", err)
		}
		e.nextNonce = &n
	}

	n := *e.nextNonce
	*e.nextNonce = n + 1
	return n, nil
}

func (e *RPCExecutor) resetNonce() {
	e.mu.Lock()
	e.nextNonce = nil
	e.mu.Unlock()
}

func (e *RPCExecutor) AwaitConfirmation(ctx context.Context, txHash string) (Receipt, error) {
	hash := common.HexToHash(txHash)

	receipt, err := poll(ctx, e.Confirm, func() (Receipt, error) {
		r, err := e.Client.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) {
			return Receipt{}, errNotMined
		}
		if err != nil {
			return Receipt{}, err
		}
		if r.Status != types.ReceiptStatusSuccessful {
			return Receipt{}, ErrReverted
		}
		return Receipt{TransactionHash: txHash, BlockNumber: r.BlockNumber.Uint64()}, nil
	})
	if err != nil {
		return Receipt{}, &SettlementError{Op: "confirm", TxHash: txHash, Err: err}
	}
	return receipt, nil
}
