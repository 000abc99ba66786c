package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	businessApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/business"
	cashierApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/contracts"
	orderApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/settlement"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/config"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/metrics"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/chain"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/circle"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/eventbus"
	httpapi "github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/http"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/outbox"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/persistence/inmemory"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/persistence/postgres"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/persistence/sqlite"
)

type stores struct {
	orders     order.Repository
	cashiers   cashier.Repository
	businesses business.Repository
	// outbox is nil for the memory store; events then go straight to the bus.
	outbox outbox.Repository
	close  func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store {
	case "memory":
		return &stores{
			orders:     inmemory.NewOrderRepository(),
			cashiers:   inmemory.NewCashierRepository(),
			businesses: inmemory.NewBusinessRepository(),
			close:      func() {},
		}, nil

	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			orders:     sqlite.NewOrderRepository(db),
			cashiers:   sqlite.NewCashierRepository(db),
			businesses: sqlite.NewBusinessRepository(db),
			outbox:     outbox.NewSQLiteRepository(db),
			close:      closer(db),
		}, nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &stores{
			orders:     postgres.NewOrderRepository(pool),
			cashiers:   postgres.NewCashierRepository(pool),
			businesses: postgres.NewBusinessRepository(pool),
			outbox:     outbox.NewPostgresRepository(pool),
			close:      pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown STORE %q", cfg.Store)
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

// newExecutor prefers the relayer when RELAY_URL is set, then a locally
// signing RPC executor. Without either, settlement stays disabled.
func newExecutor(ctx context.Context, cfg *config.Config, builder *chain.CallBuilder, logger logging.Logger) (chain.Executor, *chain.Reader, error) {
	confirm := chain.DefaultConfirmPolicy()
	confirm.Timeout = cfg.ConfirmTimeout

	var reader *chain.Reader
	var rpc *chain.RPCExecutor
	if cfg.RPCURL != "" {
		client, err := chain.DialRPC(ctx, cfg.RPCURL)
		if err != nil {
			return nil, nil, err
		}
		reader = &chain.Reader{
			Client:    client,
			Builder:   builder,
			Processor: common.HexToAddress(cfg.PaymentProcessorAddress),
		}

		if cfg.SignerKey != "" {
			key, err := chain.ParseSignerKey(cfg.SignerKey)
			if err != nil {
				return nil, nil, err
			}
			rpc = &chain.RPCExecutor{Client: client, Key: key, GasLimit: cfg.GasLimit, Confirm: confirm}
		}
	}

	switch {
	case cfg.RelayURL != "":
		logger.Info("settlement via relayer", map[string]any{"relay-url": cfg.RelayURL})
		return &chain.RelayExecutor{BaseURL: cfg.RelayURL, Confirm: confirm}, reader, nil
	case rpc != nil:
		logger.Info("settlement via rpc signer", map[string]any{"from": rpc.From().Hex()})
		return rpc, reader, nil
	}

	logger.Info("settlement disabled", map[string]any{"reason": "neither RELAY_URL nor SIGNER_KEY is set"})
	return nil, reader, nil
}

func main() {
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Env)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.SlogLogger) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	bus := eventbus.NewInMemoryBus()
	counters := &metrics.Counters{}

	var recorder contracts.EventRecorder = bus
	if st.outbox != nil {
		recorder = &outbox.Recorder{Repo: st.outbox}
		dispatcher := &outbox.Dispatcher{
			Repo:         st.outbox,
			EventBus:     bus,
			Logger:       logger,
			PollInterval: cfg.OutboxPollInterval,
			BatchSize:    50,
		}
		go dispatcher.Run(ctx)
	}

	orders := &orderApp.Service{
		Repo:     st.orders,
		Cashiers: st.cashiers,
		Recorder: recorder,
		Logger:   logger,
		Metrics:  counters,
		Decimals: cfg.TokenDecimals,
	}

	settled := &orderApp.SettlementEventHandler{Service: orders}
	bus.Subscribe(event.OrderSettled, settled.Handle)
	bus.Subscribe(event.OrderSettlementFailed, settled.Handle)

	builder, err := chain.NewCallBuilder()
	if err != nil {
		return err
	}
	executor, reader, err := newExecutor(ctx, cfg, builder, logger)
	if err != nil {
		return err
	}

	payments := &httpapi.PaymentsHandler{
		Orders:   orders,
		Decimals: cfg.TokenDecimals,
		Logger:   logger,
	}
	if reader != nil {
		payments.Reader = reader
	}

	if executor != nil {
		processor := &settlement.Processor{
			Orders:    st.orders,
			Builder:   builder,
			Executor:  executor,
			Publisher: bus,
			Logger:    logger,
			Metrics:   counters,
			Contract:  common.HexToAddress(cfg.PaymentProcessorAddress),
			Token:     common.HexToAddress(cfg.TokenAddress),
			Decimals:  cfg.TokenDecimals,
			ChainID:   cfg.ChainID,
			Timeout:   cfg.ConfirmTimeout + 30*time.Second,
		}
		payments.Settler = processor

		if cfg.AutoSettle {
			if st.outbox != nil {
				bus.Subscribe(event.OrderCreated, processor.Handle)
			} else {
				// the memory store publishes inside the create request
				bus.Subscribe(event.OrderCreated, func(ctx context.Context, evt event.Event) error {
					go func() { _ = processor.Handle(context.WithoutCancel(ctx), evt) }()
					return nil
				})
			}
		}
	}

	router := &httpapi.Router{
		Orders:   &httpapi.OrderHandler{Service: orders, Logger: logger},
		Payments: payments,
		Cashiers: &httpapi.CashierHandler{
			Cashiers:   &cashierApp.Service{Repo: st.cashiers, Businesses: st.businesses},
			Businesses: &businessApp.Service{Repo: st.businesses},
			AppURL:     cfg.AppURL,
			Logger:     logger,
		},
		JWTSecret: []byte(cfg.JWTSecret),
		Metrics:   counters,
		Logger:    logger,
	}
	if cfg.CircleAPIKey != "" {
		router.Circle = &httpapi.CircleHandler{
			Wallets: &circle.Client{
				BaseURL:    cfg.CircleBaseURL,
				APIKey:     cfg.CircleAPIKey,
				Blockchain: cfg.CircleBlockchain,
				Retries:    cfg.CircleRetries,
			},
			Logger: logger,
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", map[string]any{
			"env":   cfg.Env,
			"port":  cfg.Port,
			"store": cfg.Store,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server exited", nil)
	return nil
}
