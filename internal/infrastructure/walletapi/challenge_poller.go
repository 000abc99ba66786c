package walletapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/onboarding"
)

var errChallengeOpen = errors.New("challenge still open")

// ChallengePoller stands in for the wallet SDK where nothing can render the
// challenge UI: the user completes the challenge elsewhere and the poller
// waits for the provider to report the outcome.
type ChallengePoller struct {
	Client          *Client
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Timeout         time.Duration
	// Prompt, when set, is told which challenge the user has to complete.
	Prompt func(challengeID string)
}

var _ onboarding.ChallengeSDK = (*ChallengePoller)(nil)

func (p *ChallengePoller) Execute(ctx context.Context, challengeID string, creds onboarding.Credentials) error {
	if p.Prompt != nil {
		p.Prompt(challengeID)
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(orDefault(p.InitialInterval, 2*time.Second)),
		backoff.WithMaxInterval(orDefault(p.MaxInterval, 10*time.Second)),
		backoff.WithMaxElapsedTime(orDefault(p.Timeout, 10*time.Minute)),
	)

	return backoff.Retry(func() error {
		status, reason, err := p.Client.ChallengeStatus(ctx, creds.UserToken, challengeID)
		if err != nil {
			return backoff.Permanent(err)
		}

		switch status {
		case "COMPLETE":
			return nil
		case "FAILED", "EXPIRED":
			if reason == "" {
				reason = status
			}
			return backoff.Permanent(fmt.Errorf("challenge %s: %s", status, reason))
		}
		return errChallengeOpen
	}, backoff.WithContext(b, ctx))
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
