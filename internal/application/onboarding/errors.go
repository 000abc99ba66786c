package onboarding

import (
	"errors"
	"fmt"
)

var (
	ErrSessionBusy  = errors.New("onboarding already in progress")
	ErrSessionReset = errors.New("onboarding session was reset")
	ErrNoWallets    = errors.New("no wallets found")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ChallengeError is a challenge the SDK rejected or could not run.
type ChallengeError struct {
	ChallengeID string
	Err         error
}

func (e *ChallengeError) Error() string {
	return fmt.Sprintf("challenge %s: %v", e.ChallengeID, e.Err)
}

func (e *ChallengeError) Unwrap() error {
	return e.Err
}

// Error is the single failure a Submit reports. Message is safe to show to
// the user; Err keeps the cause.
type Error struct {
	Step    Status
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
