package chain

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

const (
	// StablecoinDecimals is USDC's fixed-point scale.
	StablecoinDecimals int32 = 6
	// ERC20Decimals is the common 18-decimal scale.
	ERC20Decimals int32 = 18
)

var amountPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// OnchainOrder mirrors the getOrder return tuple.
type OnchainOrder struct {
	Token  common.Address
	Amount *big.Int
	Paid   bool
	Payer  common.Address
	Fee    *big.Int
}

// CallBuilder encodes PaymentProcessor calls. It holds no state besides the
// parsed ABI and is safe for concurrent use.
type CallBuilder struct {
	abi abi.ABI
}

func NewCallBuilder() (*CallBuilder, error) {
	parsed, err := abi.JSON(strings.NewReader(paymentProcessorABI))
	if err != nil {
		return nil, fmt.Errorf("parse payment processor abi: %w", err)
	}
	return &CallBuilder{abi: parsed}, nil
}

// OrderID hashes a caller-supplied unique string into the contract's bytes32
// order id. The same input always yields the same id.
func OrderID(unique string) [32]byte {
	return crypto.Keccak256Hash([]byte(unique))
}

// ScaleAmount converts a non-negative decimal string into the token's integer
// representation at the given number of decimals.
func ScaleAmount(amount string, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, &InvalidAmountError{Amount: amount, Reason: "negative scale"}
	}
	if !amountPattern.MatchString(amount) || strings.Trim(amount, ".") == "" {
		return nil, &InvalidAmountError{Amount: amount, Reason: "must be a non-negative decimal"}
	}
	if i := strings.IndexByte(amount, '.'); i >= 0 && int32(len(amount)-i-1) > decimals {
		return nil, &InvalidAmountError{Amount: amount, Reason: fmt.Sprintf("more than %d fractional digits", decimals)}
	}

	normalized := amount
	if strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	}
	normalized = strings.TrimSuffix(normalized, ".")

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return nil, &InvalidAmountError{Amount: amount, Reason: err.Error()}
	}
	return d.Shift(decimals).BigInt(), nil
}

func (b *CallBuilder) EncodeCreateOrder(orderID [32]byte, token common.Address, amount string, decimals int32) ([]byte, error) {
	scaled, err := ScaleAmount(amount, decimals)
	if err != nil {
		return nil, err
	}
	return b.abi.Pack("createPaymentOrder", orderID, token, scaled)
}

func (b *CallBuilder) EncodePayOrder(orderID [32]byte) ([]byte, error) {
	return b.abi.Pack("payOrder", orderID)
}

func (b *CallBuilder) EncodeGetOrder(orderID [32]byte) ([]byte, error) {
	return b.abi.Pack("getOrder", orderID)
}

func (b *CallBuilder) EncodeCalculateFee(amount string, decimals int32) ([]byte, error) {
	scaled, err := ScaleAmount(amount, decimals)
	if err != nil {
		return nil, err
	}
	return b.abi.Pack("calculateFee", scaled)
}

func (b *CallBuilder) DecodeGetOrder(data []byte) (*OnchainOrder, error) {
	out, err := b.abi.Unpack("getOrder", data)
	if err != nil {
		return nil, fmt.Errorf("decode getOrder: %w", err)
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("decode getOrder: expected 5 values, got %d", len(out))
	}

	return &OnchainOrder{
		Token:  *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Amount: *abi.ConvertType(out[1], new(*big.Int)).(**big.Int),
		Paid:   *abi.ConvertType(out[2], new(bool)).(*bool),
		Payer:  *abi.ConvertType(out[3], new(common.Address)).(*common.Address),
		Fee:    *abi.ConvertType(out[4], new(*big.Int)).(**big.Int),
	}, nil
}

func (b *CallBuilder) DecodeCalculateFee(data []byte) (*big.Int, error) {
	out, err := b.abi.Unpack("calculateFee", data)
	if err != nil {
		return nil, fmt.Errorf("decode calculateFee: %w", err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("decode calculateFee: expected 1 value, got %d", len(out))
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// FormatUnits renders an on-chain integer amount as a decimal string.
func FormatUnits(v *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(v, -decimals).String()
}
