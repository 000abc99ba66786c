package onboarding

import "context"

type Status string

const (
	StatusInput      Status = "input"
	StatusCreating   Status = "creating"
	StatusSettingPin Status = "setting_pin"
	StatusPaying     Status = "paying"
	StatusComplete   Status = "complete"
)

// Credentials authorize exactly one challenge execution.
type Credentials struct {
	UserToken     string
	EncryptionKey string
}

type Wallet struct {
	ID         string
	Address    string
	Blockchain string
	State      string
}

type Challenge struct {
	ChallengeID string
	Credentials Credentials
}

// PaymentRequest is the optional transfer made once the wallet exists.
type PaymentRequest struct {
	Amount             string
	DestinationAddress string
	TokenID            string
}

type TransferRequest struct {
	UserID             string
	WalletID           string
	TokenID            string
	DestinationAddress string
	Amount             string
}

// Session is a snapshot of one onboarding attempt. It never carries
// credentials.
type Session struct {
	Status        Status
	Email         string
	UserID        string
	WalletID      string
	WalletAddress string
}

// Backend is the wallet provider as seen through the dashboard's proxy.
type Backend interface {
	CreateUser(ctx context.Context, userID, email string) error
	CreateUserToken(ctx context.Context, userID string) (Credentials, error)
	CreatePinChallenge(ctx context.Context, creds Credentials) (string, error)
	ListWallets(ctx context.Context, userID string) ([]Wallet, error)
	RequestTestTokens(ctx context.Context, address string) error
	CreateTransaction(ctx context.Context, req TransferRequest) (Challenge, error)
}

// ChallengeSDK runs a challenge to completion. Execute blocks until the
// challenge is resolved or rejected.
type ChallengeSDK interface {
	Execute(ctx context.Context, challengeID string, creds Credentials) error
}
