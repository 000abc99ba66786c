package walletapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/onboarding"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/paymentclient"
)

// Client implements onboarding.Backend against the dashboard's wallet
// proxy routes. The provider API key never leaves the server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ onboarding.Backend = (*Client)(nil)

type credentials struct {
	UserToken     string `json:"userToken"`
	EncryptionKey string `json:"encryptionKey"`
}

type wallet struct {
	ID         string `json:"id"`
	Address    string `json:"address"`
	Blockchain string `json:"blockchain"`
	State      string `json:"state"`
}

func (c *Client) CreateUser(ctx context.Context, userID, email string) error {
	body := map[string]string{"userId": userID, "email": email}
	return c.do(ctx, http.MethodPost, "/api/circle/users", "", body, nil)
}

func (c *Client) CreateUserToken(ctx context.Context, userID string) (onboarding.Credentials, error) {
	var out credentials
	if err := c.do(ctx, http.MethodPost, "/api/circle/users/"+url.PathEscape(userID)+"/token", "", nil, &out); err != nil {
		return onboarding.Credentials{}, err
	}
	return onboarding.Credentials{UserToken: out.UserToken, EncryptionKey: out.EncryptionKey}, nil
}

func (c *Client) CreatePinChallenge(ctx context.Context, creds onboarding.Credentials) (string, error) {
	var out struct {
		ChallengeID string `json:"challengeId"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/circle/pin-challenge", creds.UserToken, nil, &out); err != nil {
		return "", err
	}
	return out.ChallengeID, nil
}

func (c *Client) ListWallets(ctx context.Context, userID string) ([]onboarding.Wallet, error) {
	var out struct {
		Wallets []wallet `json:"wallets"`
	}
	path := "/api/circle/wallet-status?" + url.Values{"userId": {userID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}

	wallets := make([]onboarding.Wallet, 0, len(out.Wallets))
	for _, w := range out.Wallets {
		wallets = append(wallets, onboarding.Wallet(w))
	}
	return wallets, nil
}

func (c *Client) RequestTestTokens(ctx context.Context, address string) error {
	return c.do(ctx, http.MethodPost, "/api/circle/request-tokens", "", map[string]string{"address": address}, nil)
}

func (c *Client) CreateTransaction(ctx context.Context, req onboarding.TransferRequest) (onboarding.Challenge, error) {
	body := map[string]string{
		"userId":             req.UserID,
		"walletId":           req.WalletID,
		"tokenId":            req.TokenID,
		"destinationAddress": req.DestinationAddress,
		"amount":             req.Amount,
	}
	var out struct {
		ChallengeID string `json:"challengeId"`
		credentials
	}
	if err := c.do(ctx, http.MethodPost, "/api/circle/create-transaction", "", body, &out); err != nil {
		return onboarding.Challenge{}, err
	}
	return onboarding.Challenge{
		ChallengeID: out.ChallengeID,
		Credentials: onboarding.Credentials{UserToken: out.UserToken, EncryptionKey: out.EncryptionKey},
	}, nil
}

// ChallengeStatus reports a challenge's provider status, e.g. COMPLETE.
func (c *Client) ChallengeStatus(ctx context.Context, userToken, challengeID string) (string, string, error) {
	var out struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"errorMessage"`
	}
	path := "/api/circle/challenge-status?" + url.Values{"challengeId": {challengeID}}.Encode()
	if err := c.do(ctx, http.MethodGet, path, userToken, nil, &out); err != nil {
		return "", "", err
	}
	return out.Status, out.ErrorMessage, nil
}

// do unwraps the {"data": ...} envelope of the proxy routes.
func (c *Client) do(ctx context.Context, method, path, userToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userToken != "" {
		req.Header.Set("X-User-Token", userToken)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return &paymentclient.RequestError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if out == nil {
		return paymentclient.DecodeResponse(resp, nil)
	}
	envelope := struct {
		Data any `json:"data"`
	}{Data: out}
	return paymentclient.DecodeResponse(resp, &envelope)
}
