package order

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// MaxPendingPerCashier caps how many pending orders a single cashier may hold.
const MaxPendingPerCashier = 10

const (
	DefaultCurrency = "USDC"
	DefaultNetwork  = "polygon"
)

var (
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrTerminalState      = errors.New("payment order is in a terminal state")
	ErrMaxPendingPayments = errors.New("maximum pending payments limit reached for this cashier")
	ErrInvalidStatus      = errors.New("invalid payment order status")
	ErrMissingTxHash      = errors.New("completed payment order requires a transaction hash")
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

type PaymentOrder struct {
	ID              string
	UniqueID        string
	Amount          decimal.Decimal
	Currency        string
	Network         string
	CashierID       string
	Status          Status
	TransactionHash string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Transition moves a pending order into a terminal status. It is the only
// way an order's status changes.
func (o *PaymentOrder) Transition(to Status, txHash string) error {
	if !to.Valid() || to == StatusPending {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if o.Status.Terminal() {
		return ErrTerminalState
	}
	if to == StatusCompleted && txHash == "" {
		return ErrMissingTxHash
	}
	if to == StatusFailed {
		txHash = ""
	}

	o.Status = to
	o.TransactionHash = txHash
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// NewUniqueID returns a "<unix-ms>-<9 base36 chars>" token.
func NewUniqueID() string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	var b strings.Builder
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))
	b.WriteByte('-')
	for i := 0; i < 9; i++ {
		b.WriteByte(alphabet[rand.Intn(len(alphabet))])
	}
	return b.String()
}
