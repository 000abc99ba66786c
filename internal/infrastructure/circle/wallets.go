package circle

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type UserToken struct {
	UserToken     string `json:"userToken"`
	EncryptionKey string `json:"encryptionKey"`
}

type Wallet struct {
	ID         string `json:"id"`
	Address    string `json:"address"`
	Blockchain string `json:"blockchain"`
	State      string `json:"state"`
	UserID     string `json:"userId"`
}

// Challenge states reported by the provider.
const (
	ChallengePending    = "PENDING"
	ChallengeInProgress = "IN_PROGRESS"
	ChallengeComplete   = "COMPLETE"
	ChallengeFailed     = "FAILED"
	ChallengeExpired    = "EXPIRED"
)

type Challenge struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Status         string   `json:"status"`
	CorrelationIDs []string `json:"correlationIds,omitempty"`
	ErrorCode      int      `json:"errorCode,omitempty"`
	ErrorMessage   string   `json:"errorMessage,omitempty"`
}

type Transaction struct {
	ID                 string   `json:"id"`
	State              string   `json:"state"`
	TxHash             string   `json:"txHash,omitempty"`
	Blockchain         string   `json:"blockchain"`
	Amounts            []string `json:"amounts"`
	DestinationAddress string   `json:"destinationAddress"`
	WalletID           string   `json:"walletId"`
}

type Transfer struct {
	UserID             string
	WalletID           string
	TokenID            string
	DestinationAddress string
	Amount             string
}

func (c *Client) CreateUser(ctx context.Context, userID string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v1/w3s/users",
		body:   map[string]string{"userId": userID},
	}, nil)
}

func (c *Client) CreateUserToken(ctx context.Context, userID string) (UserToken, error) {
	var out UserToken
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v1/w3s/users/token",
		body:   map[string]string{"userId": userID},
	}, &out)
	return out, err
}

// InitializeUser creates the PIN challenge that also provisions the user's
// wallet on the configured blockchain.
func (c *Client) InitializeUser(ctx context.Context, userToken string) (string, error) {
	var out struct {
		ChallengeID string `json:"challengeId"`
	}
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/v1/w3s/user/initialize",
		userToken: userToken,
		body: map[string]any{
			"idempotencyKey": uuid.NewString(),
			"blockchains":    []string{c.Blockchain},
		},
	}, &out)
	return out.ChallengeID, err
}

func (c *Client) ListWallets(ctx context.Context, userID string) ([]Wallet, error) {
	var out struct {
		Wallets []Wallet `json:"wallets"`
	}
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/v1/w3s/wallets",
		query:  map[string]string{"userId": userID},
	}, &out)
	return out.Wallets, err
}

func (c *Client) CreateTransfer(ctx context.Context, userToken string, t Transfer) (string, error) {
	var out struct {
		ChallengeID string `json:"challengeId"`
	}
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/v1/w3s/user/transactions/transfer",
		userToken: userToken,
		body: map[string]any{
			"idempotencyKey":     uuid.NewString(),
			"userId":             t.UserID,
			"walletId":           t.WalletID,
			"tokenId":            t.TokenID,
			"destinationAddress": t.DestinationAddress,
			"amounts":            []string{t.Amount},
			"feeLevel":           "MEDIUM",
		},
	}, &out)
	return out.ChallengeID, err
}

func (c *Client) GetChallenge(ctx context.Context, userToken, challengeID string) (*Challenge, error) {
	var out struct {
		Challenge Challenge `json:"challenge"`
	}
	err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/v1/w3s/user/challenges/" + challengeID,
		userToken: userToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Challenge, nil
}

func (c *Client) GetTransaction(ctx context.Context, userToken, transactionID string) (*Transaction, error) {
	var out struct {
		Transaction Transaction `json:"transaction"`
	}
	err := c.do(ctx, request{
		method:    http.MethodGet,
		path:      "/v1/w3s/transactions/" + transactionID,
		userToken: userToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.Transaction, nil
}

// RequestTestTokens drips testnet USDC and native gas to address.
func (c *Client) RequestTestTokens(ctx context.Context, address string) error {
	return c.do(ctx, request{
		method: http.MethodPost,
		path:   "/v1/faucet/drips",
		body: map[string]any{
			"address":    address,
			"blockchain": c.Blockchain,
			"usdc":       true,
			"native":     true,
		},
	}, nil)
}
