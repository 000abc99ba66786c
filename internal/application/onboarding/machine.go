package onboarding

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/metrics"
)

type Option func(*Machine)

// WithObserver registers fn to be called after every status change.
func WithObserver(fn func(Status)) Option {
	return func(m *Machine) { m.observers = append(m.observers, fn) }
}

// WithTestTokens requests faucet funds for the new wallet before any payment.
func WithTestTokens() Option {
	return func(m *Machine) { m.fundTestTokens = true }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Machine) { m.logger = l }
}

func WithMetrics(c *metrics.Counters) Option {
	return func(m *Machine) { m.metrics = c }
}

func WithUserIDs(next func() string) Option {
	return func(m *Machine) { m.newUserID = next }
}

// Machine drives one onboarding session. Submits are sequential; a second
// Submit while one is running fails with ErrSessionBusy.
type Machine struct {
	backend Backend
	sdk     ChallengeSDK

	observers      []func(Status)
	fundTestTokens bool
	logger         logging.Logger
	metrics        *metrics.Counters
	newUserID      func() string

	mu      sync.Mutex
	session Session
	creds   *Credentials
	// gen changes on every reset so a stale Submit stops touching the session
	gen uint64
}

func New(backend Backend, sdk ChallengeSDK, opts ...Option) *Machine {
	m := &Machine{
		backend:   backend,
		sdk:       sdk,
		newUserID: uuid.NewString,
		session:   Session{Status: StatusInput},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Reset discards the session and any credentials it still holds.
func (m *Machine) Reset() {
	m.mu.Lock()
	m.gen++
	m.session = Session{Status: StatusInput}
	m.creds = nil
	m.mu.Unlock()

	m.notify(StatusInput)
}

func (m *Machine) Submit(ctx context.Context, email string, payment *PaymentRequest) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, &ValidationError{Field: "email", Reason: "is required"}
	}
	if payment != nil {
		if err := validatePayment(payment); err != nil {
			return Session{}, err
		}
	}

	m.mu.Lock()
	if m.session.Status != StatusInput {
		m.mu.Unlock()
		return Session{}, ErrSessionBusy
	}
	gen := m.gen
	m.session = Session{Status: StatusCreating, Email: email, UserID: m.newUserID()}
	userID := m.session.UserID
	m.mu.Unlock()
	m.notify(StatusCreating)

	run := &attempt{m: m, gen: gen, userID: userID}
	if err := run.do(ctx, email, payment); err != nil {
		return Session{}, m.fail(gen, err)
	}

	if !m.advance(gen, StatusComplete, nil) {
		return Session{}, m.fail(gen, ErrSessionReset)
	}
	if m.metrics != nil {
		m.metrics.IncOnboardingCompleted()
	}
	m.log("onboarding complete", map[string]any{"user-id": userID})
	return m.Session(), nil
}

func validatePayment(p *PaymentRequest) error {
	switch {
	case strings.TrimSpace(p.Amount) == "":
		return &ValidationError{Field: "amount", Reason: "is required"}
	case strings.TrimSpace(p.DestinationAddress) == "":
		return &ValidationError{Field: "destinationAddress", Reason: "is required"}
	case strings.TrimSpace(p.TokenID) == "":
		return &ValidationError{Field: "tokenId", Reason: "is required"}
	}
	return nil
}

// attempt holds what one Submit learns as it moves through the steps.
type attempt struct {
	m      *Machine
	gen    uint64
	userID string
}

func (a *attempt) do(ctx context.Context, email string, payment *PaymentRequest) error {
	m := a.m

	if err := m.backend.CreateUser(ctx, a.userID, email); err != nil {
		return stepError(StatusCreating, "failed to create wallet", err)
	}
	creds, err := m.backend.CreateUserToken(ctx, a.userID)
	if err != nil {
		return stepError(StatusCreating, "failed to create wallet", err)
	}

	if !m.advance(a.gen, StatusSettingPin, nil) {
		return ErrSessionReset
	}
	challengeID, err := m.backend.CreatePinChallenge(ctx, creds)
	if err != nil {
		return stepError(StatusSettingPin, "failed to set wallet PIN", err)
	}
	if !m.advance(a.gen, StatusSettingPin, func(*Session) { m.creds = &creds }) {
		return ErrSessionReset
	}
	if err := a.execute(ctx, challengeID); err != nil {
		return stepError(StatusSettingPin, "failed to set wallet PIN", err)
	}

	wallets, err := m.backend.ListWallets(ctx, a.userID)
	if err != nil {
		return stepError(StatusSettingPin, "failed to get wallet status", err)
	}
	if len(wallets) == 0 {
		return stepError(StatusSettingPin, "no wallets found", ErrNoWallets)
	}
	wallet := wallets[0]
	if !m.advance(a.gen, StatusSettingPin, func(s *Session) {
		s.WalletID = wallet.ID
		s.WalletAddress = wallet.Address
	}) {
		return ErrSessionReset
	}

	if m.fundTestTokens {
		if err := m.backend.RequestTestTokens(ctx, wallet.Address); err != nil {
			return stepError(StatusSettingPin, "failed to request tokens", err)
		}
	}

	if payment == nil {
		return nil
	}

	if !m.advance(a.gen, StatusPaying, nil) {
		return ErrSessionReset
	}
	challenge, err := m.backend.CreateTransaction(ctx, TransferRequest{
		UserID:             a.userID,
		WalletID:           wallet.ID,
		TokenID:            payment.TokenID,
		DestinationAddress: payment.DestinationAddress,
		Amount:             payment.Amount,
	})
	if err != nil {
		return stepError(StatusPaying, "failed to create transaction", err)
	}
	if !m.advance(a.gen, StatusPaying, func(*Session) { m.creds = &challenge.Credentials }) {
		return ErrSessionReset
	}
	if err := a.execute(ctx, challenge.ChallengeID); err != nil {
		return stepError(StatusPaying, "failed to confirm payment", err)
	}
	return nil
}

// execute runs a challenge with the credentials currently held and drops
// them afterwards, whatever the outcome.
func (a *attempt) execute(ctx context.Context, challengeID string) error {
	m := a.m

	m.mu.Lock()
	if m.gen != a.gen || m.creds == nil {
		m.mu.Unlock()
		return ErrSessionReset
	}
	creds := *m.creds
	m.mu.Unlock()

	err := m.sdk.Execute(ctx, challengeID, creds)

	m.mu.Lock()
	if m.gen == a.gen {
		m.creds = nil
	}
	m.mu.Unlock()

	if err != nil {
		return &ChallengeError{ChallengeID: challengeID, Err: err}
	}
	return nil
}

// advance moves the session to status and applies edit, unless the session
// was reset since gen was taken.
func (m *Machine) advance(gen uint64, status Status, edit func(*Session)) bool {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false
	}
	changed := m.session.Status != status
	m.session.Status = status
	if edit != nil {
		edit(&m.session)
	}
	m.mu.Unlock()

	if changed {
		m.notify(status)
	}
	return true
}

func (m *Machine) fail(gen uint64, err error) error {
	m.mu.Lock()
	current := m.gen == gen
	if current {
		m.gen++
		m.session = Session{Status: StatusInput}
		m.creds = nil
	}
	m.mu.Unlock()
	if current {
		m.notify(StatusInput)
	}

	if m.metrics != nil {
		m.metrics.IncOnboardingFailed()
	}

	var oe *Error
	if !errors.As(err, &oe) {
		oe = &Error{Step: StatusInput, Message: "onboarding failed", Err: err}
	}
	if m.logger != nil {
		m.logger.Error("onboarding failed", map[string]any{
			"step":  string(oe.Step),
			"error": oe.Err.Error(),
		})
	}
	return oe
}

func stepError(step Status, message string, err error) *Error {
	return &Error{Step: step, Message: message, Err: err}
}

func (m *Machine) notify(status Status) {
	for _, fn := range m.observers {
		fn(status)
	}
}

func (m *Machine) log(msg string, fields map[string]any) {
	if m.logger != nil {
		m.logger.Info(msg, fields)
	}
}
