package order_test

import (
	"context"
	"sync"
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/event"
	domainOrder "github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/metrics"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/persistence/inmemory"
)

type fakeRecorder struct {
	mu       sync.Mutex
	recorded []event.Event
}

func (f *fakeRecorder) Record(_ context.Context, evt event.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, evt)
	return nil
}

type fixture struct {
	svc      *order.Service
	repo     *inmemory.OrderRepository
	recorder *fakeRecorder
	metrics  *metrics.Counters
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	cashiers := inmemory.NewCashierRepository()
	ctx := context.Background()
	require.NoError(t, cashiers.Save(ctx, &cashier.Cashier{ID: "c1", Name: "Front desk", BusinessID: "b1", Active: true, UniqueID: "u1"}))
	require.NoError(t, cashiers.Save(ctx, &cashier.Cashier{ID: "c2", Name: "Bar", BusinessID: "b1", Active: true, UniqueID: "u2"}))
	require.NoError(t, cashiers.Save(ctx, &cashier.Cashier{ID: "off", Name: "Closed", BusinessID: "b1", Active: false, UniqueID: "u3"}))

	repo := inmemory.NewOrderRepository()
	recorder := &fakeRecorder{}
	m := &metrics.Counters{}

	return fixture{
		svc: &order.Service{
			Repo:     repo,
			Cashiers: cashiers,
			Recorder: recorder,
			Logger:   &logging.SlogLogger{L: slogt.New(t)},
			Metrics:  m,
		},
		repo:     repo,
		recorder: recorder,
		metrics:  m,
	}
}

func usdc(cashierID, amount string) order.CreateInput {
	return order.CreateInput{
		Amount:    decimal.RequireFromString(amount),
		CashierID: cashierID,
		Currency:  "USDC",
	}
}

func TestCreate_PendingOrderWithDefaults(t *testing.T) {
	f := newFixture(t)

	o, err := f.svc.Create(context.Background(), order.CreateInput{
		Amount:    decimal.NewFromInt(100),
		CashierID: "c1",
	})

	require.NoError(t, err)
	require.Equal(t, domainOrder.StatusPending, o.Status)
	require.Equal(t, "USDC", o.Currency)
	require.Equal(t, "polygon", o.Network)
	require.NotEmpty(t, o.ID)
	require.NotEmpty(t, o.UniqueID)
	require.Equal(t, uint64(1), f.metrics.OrdersCreated)
	require.Len(t, f.recorder.recorded, 1)
	require.Equal(t, event.OrderCreated, f.recorder.recorded[0].Type)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, usdc("c1", "0"))
	var verr *order.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "amount", verr.Field)

	_, err = f.svc.Create(ctx, usdc("", "10"))
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "cashier", verr.Field)

	_, err = f.svc.Create(ctx, usdc("missing", "10"))
	require.ErrorIs(t, err, cashier.ErrCashierNotFound)

	_, err = f.svc.Create(ctx, usdc("off", "10"))
	require.ErrorIs(t, err, cashier.ErrCashierInactive)

	orders, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCreate_RejectsAmountsFinerThanTokenScale(t *testing.T) {
	f := newFixture(t)
	f.svc.Decimals = 6
	ctx := context.Background()

	_, err := f.svc.Create(ctx, usdc("c1", "0.0000001"))
	var verr *order.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "amount", verr.Field)
	require.Empty(t, f.recorder.recorded)

	o, err := f.svc.Create(ctx, usdc("c1", "1.25000000"))
	require.NoError(t, err)

	tooFine := decimal.RequireFromString("2.1234567")
	_, err = f.svc.Update(ctx, o.ID, order.UpdateInput{Amount: &tooFine})
	require.ErrorAs(t, err, &verr)

	stored, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, stored.Amount.Equal(decimal.RequireFromString("1.25")))
}

func TestCreate_EleventhPendingOrderIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < domainOrder.MaxPendingPerCashier; i++ {
		_, err := f.svc.Create(ctx, usdc("c1", "100"))
		require.NoError(t, err)
	}

	_, err := f.svc.Create(ctx, usdc("c1", "100"))
	require.ErrorIs(t, err, domainOrder.ErrMaxPendingPayments)
	require.Contains(t, err.Error(), "maximum pending payments")

	orders, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, domainOrder.MaxPendingPerCashier)

	// other cashiers are unaffected
	_, err = f.svc.Create(ctx, usdc("c2", "100"))
	require.NoError(t, err)
}

func TestCreate_SettledOrdersFreeUpTheLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var first *domainOrder.PaymentOrder
	for i := 0; i < domainOrder.MaxPendingPerCashier; i++ {
		o, err := f.svc.Create(ctx, usdc("c1", "1"))
		require.NoError(t, err)
		if i == 0 {
			first = o
		}
	}

	_, err := f.svc.Complete(ctx, first.ID, "0xabc")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, usdc("c1", "1"))
	require.NoError(t, err)
}

func TestCreate_ConcurrentCreatesNeverExceedLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Create(ctx, usdc("c1", "5"))
		}()
	}
	wg.Wait()

	orders, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, domainOrder.MaxPendingPerCashier)
}

func TestUpdate_TerminalOrderIsNeverTransitionedAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, usdc("c1", "100"))
	require.NoError(t, err)

	completed, err := f.svc.Complete(ctx, o.ID, "0xabc")
	require.NoError(t, err)
	require.Equal(t, domainOrder.StatusCompleted, completed.Status)
	require.Equal(t, "0xabc", completed.TransactionHash)

	_, err = f.svc.Fail(ctx, o.ID)
	require.ErrorIs(t, err, domainOrder.ErrTerminalState)

	_, err = f.svc.Complete(ctx, o.ID, "0xdef")
	require.ErrorIs(t, err, domainOrder.ErrTerminalState)

	amount := decimal.NewFromInt(1)
	_, err = f.svc.Update(ctx, o.ID, order.UpdateInput{Amount: &amount})
	require.ErrorIs(t, err, domainOrder.ErrTerminalState)

	stored, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domainOrder.StatusCompleted, stored.Status)
	require.Equal(t, "0xabc", stored.TransactionHash)
	require.True(t, stored.Amount.Equal(decimal.NewFromInt(100)))
}

func TestUpdate_EditsPendingOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, usdc("c1", "100"))
	require.NoError(t, err)

	amount := decimal.RequireFromString("12.5")
	network := "arbitrum-sepolia"
	updated, err := f.svc.Update(ctx, o.ID, order.UpdateInput{Amount: &amount, Network: &network})

	require.NoError(t, err)
	require.Equal(t, "12.5", updated.Amount.String())
	require.Equal(t, "arbitrum-sepolia", updated.Network)
	require.Equal(t, domainOrder.StatusPending, updated.Status)
}

func TestUpdate_RecordsTerminalEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, usdc("c1", "100"))
	require.NoError(t, err)

	_, err = f.svc.Fail(ctx, o.ID)
	require.NoError(t, err)

	require.Len(t, f.recorder.recorded, 2)
	last := f.recorder.recorded[1]
	require.Equal(t, event.OrderFailed, last.Type)
	require.Equal(t, "failed", last.Payload.(event.OrderStatusPayload).Status)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	o, err := f.svc.Create(ctx, usdc("c1", "100"))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, o.ID))
	require.ErrorIs(t, f.svc.Delete(ctx, o.ID), domainOrder.ErrOrderNotFound)

	_, err = f.svc.Get(ctx, o.ID)
	require.ErrorIs(t, err, domainOrder.ErrOrderNotFound)
}

func TestSettlementEventHandler_AppliesOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h := &order.SettlementEventHandler{Service: f.svc}

	paid, err := f.svc.Create(ctx, usdc("c1", "50"))
	require.NoError(t, err)
	broken, err := f.svc.Create(ctx, usdc("c1", "50"))
	require.NoError(t, err)

	require.NoError(t, h.Handle(ctx, event.Event{
		Type:    event.OrderSettled,
		Payload: event.OrderSettledPayload{OrderID: paid.ID, TransactionHash: "0x01", BlockNumber: 3},
	}))
	require.NoError(t, h.Handle(ctx, event.Event{
		Type:    event.OrderSettlementFailed,
		Payload: event.OrderSettlementFailedPayload{OrderID: broken.ID, Reason: "reverted"},
	}))

	got, _ := f.svc.Get(ctx, paid.ID)
	require.Equal(t, domainOrder.StatusCompleted, got.Status)
	require.Equal(t, "0x01", got.TransactionHash)

	got, _ = f.svc.Get(ctx, broken.ID)
	require.Equal(t, domainOrder.StatusFailed, got.Status)

	err = h.Handle(ctx, event.Event{Type: event.OrderSettled, Payload: "garbage"})
	require.Error(t, err)
}
