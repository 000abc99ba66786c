package chain

import "fmt"

type InvalidAmountError struct {
	Amount string
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %s", e.Amount, e.Reason)
}

// SettlementError wraps any failure while submitting or confirming a
// transaction. Op is "submit" or "confirm".
type SettlementError struct {
	Op     string
	TxHash string
	Err    error
}

func (e *SettlementError) Error() string {
	if e.TxHash != "" {
		return fmt.Sprintf("settlement %s %s: %v", e.Op, e.TxHash, e.Err)
	}
	return fmt.Sprintf("settlement %s: %v", e.Op, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}
