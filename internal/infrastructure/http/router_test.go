package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/neilotoole/slogt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	businessApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/business"
	cashierApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/cashier"
	orderApp "github.com/rcarvalho-pb/chatterpay_business-go/internal/application/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/settlement"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/business"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/cashier"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/domain/order"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/metrics"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/chain"
	httpapi "github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/http"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/persistence/inmemory"
)

var secret = []byte("test-secret")

type fakeSettler struct {
	executeFn func(ctx context.Context, id string) (*settlement.Result, error)
}

func (f *fakeSettler) Execute(ctx context.Context, id string) (*settlement.Result, error) {
	return f.executeFn(ctx, id)
}

type fakeReader struct {
	getOrderFn func(unique string) (*chain.OnchainOrder, error)
	feeFn      func(amount string) (*big.Int, error)
}

func (f *fakeReader) GetOrder(_ context.Context, unique string) (*chain.OnchainOrder, error) {
	return f.getOrderFn(unique)
}

func (f *fakeReader) CalculateFee(_ context.Context, amount string, _ int32) (*big.Int, error) {
	return f.feeFn(amount)
}

type server struct {
	*httptest.Server
	orders   *orderApp.Service
	cashiers *inmemory.CashierRepository
	payments *httpapi.PaymentsHandler
	token    string
}

func newServer(t *testing.T) *server {
	t.Helper()

	ctx := context.Background()
	logger := &logging.SlogLogger{L: slogt.New(t)}
	m := &metrics.Counters{}

	businesses := inmemory.NewBusinessRepository()
	require.NoError(t, businesses.Save(ctx, &business.Business{ID: "b1", Name: "Cafe Central", Owner: "owner-1", PhotoURL: "https://img/logo.png"}))
	cashiers := inmemory.NewCashierRepository()
	require.NoError(t, cashiers.Save(ctx, &cashier.Cashier{ID: "c1", Name: "Front desk", BusinessID: "b1", Active: true, UniqueID: "qr-front"}))

	orders := &orderApp.Service{
		Repo:     inmemory.NewOrderRepository(),
		Cashiers: cashiers,
		Logger:   logger,
		Metrics:  m,
		Decimals: chain.StablecoinDecimals,
	}
	payments := &httpapi.PaymentsHandler{
		Orders:   orders,
		Settler:  &fakeSettler{},
		Decimals: chain.StablecoinDecimals,
		Logger:   logger,
	}

	rt := &httpapi.Router{
		Orders:   &httpapi.OrderHandler{Service: orders, Logger: logger},
		Payments: payments,
		Cashiers: &httpapi.CashierHandler{
			Cashiers:   &cashierApp.Service{Repo: cashiers, Businesses: businesses},
			Businesses: &businessApp.Service{Repo: businesses},
			AppURL:     "https://pay.example",
			Logger:     logger,
		},
		JWTSecret: secret,
		Metrics:   m,
		Logger:    logger,
	}

	srv := httptest.NewServer(rt.Handler())
	t.Cleanup(srv.Close)

	token, err := httpapi.IssueToken(secret, "owner-1", time.Hour)
	require.NoError(t, err)

	return &server{Server: srv, orders: orders, cashiers: cashiers, payments: payments, token: token}
}

func (s *server) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func mustDecimal(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

type errorBody struct {
	Error string `json:"error"`
}

type orderBody struct {
	ID              string      `json:"id"`
	UniqueID        string      `json:"uniqueId"`
	Amount          json.Number `json:"amount"`
	CashierID       string      `json:"cashier"`
	Currency        string      `json:"currency"`
	Network         string      `json:"network"`
	Status          string      `json:"status"`
	TransactionHash string      `json:"transactionHash"`
}

func TestHealthz(t *testing.T) {
	s := newServer(t)

	var out map[string]string
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "", nil, &out))
	require.Equal(t, "ok", out["status"])
}

func TestBusinessRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	var out errorBody
	require.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/business/payment", "", nil, &out))
	require.Equal(t, "Missing authorization token", out.Error)

	require.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/business/payment", "not-a-jwt", nil, &out))
	require.Equal(t, "Invalid token", out.Error)

	forged, err := httpapi.IssueToken([]byte("other-secret"), "owner-1", time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/business/payment", forged, nil, &out))
	require.Equal(t, "Invalid token", out.Error)
}

func TestOrderCRUD(t *testing.T) {
	s := newServer(t)

	var created struct {
		Message string    `json:"message"`
		Order   orderBody `json:"order"`
	}
	status := s.do(t, http.MethodPost, "/business/payment", s.token,
		map[string]any{"amount": "12.5", "cashier": "c1"}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "Payment order created", created.Message)
	require.Equal(t, "12.5", created.Order.Amount.String())
	require.Equal(t, "pending", created.Order.Status)
	require.Equal(t, "USDC", created.Order.Currency)
	require.Equal(t, "polygon", created.Order.Network)
	require.NotEmpty(t, created.Order.UniqueID)

	id := created.Order.ID

	var list struct {
		Orders []orderBody `json:"orders"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/business/payment", s.token, nil, &list))
	require.Len(t, list.Orders, 1)

	var errOut errorBody
	status = s.do(t, http.MethodPut, "/business/payment/"+id, s.token,
		map[string]any{"status": "completed"}, &errOut)
	require.Equal(t, http.StatusBadRequest, status)

	var updated struct {
		Order orderBody `json:"order"`
	}
	status = s.do(t, http.MethodPut, "/business/payment/"+id, s.token,
		map[string]any{"status": "completed", "transactionHash": "0xfeed"}, &updated)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "completed", updated.Order.Status)
	require.Equal(t, "0xfeed", updated.Order.TransactionHash)

	status = s.do(t, http.MethodPut, "/business/payment/"+id, s.token,
		map[string]any{"amount": 3}, &errOut)
	require.Equal(t, http.StatusConflict, status)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/business/payment/"+id, s.token, nil, nil))
	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/business/payment/"+id, s.token, nil, &errOut))
}

func TestCreatePayment(t *testing.T) {
	s := newServer(t)

	var errOut errorBody
	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/payments/create", s.token,
		map[string]any{"amount": 10}, &errOut))
	require.Equal(t, "Missing required fields", errOut.Error)

	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/payments/create", s.token,
		map[string]any{"amount": 10, "cashierId": "nope"}, &errOut))
	require.Equal(t, "Cashier not found", errOut.Error)

	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/payments/create", s.token,
		map[string]any{"amount": 0.0000001, "cashierId": "c1"}, &errOut))
	require.Equal(t, "invalid amount: has more than 6 decimal places", errOut.Error)

	var out struct {
		Status string `json:"status"`
		Data   struct {
			Message string    `json:"message"`
			Payment orderBody `json:"payment"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/payments/create", s.token,
		map[string]any{"amount": 10, "cashierId": "c1", "network": "arbitrum"}, &out))
	require.Equal(t, "success", out.Status)
	require.Equal(t, "Payment created successfully", out.Data.Message)
	require.Equal(t, "arbitrum", out.Data.Payment.Network)
	require.Equal(t, "c1", out.Data.Payment.CashierID)
}

func TestCreatePaymentRequiresToken(t *testing.T) {
	s := newServer(t)

	var errOut errorBody
	require.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/payments/create", "",
		map[string]any{"amount": 10, "cashierId": "c1"}, &errOut))
	require.Equal(t, "Missing authorization token", errOut.Error)
}

func TestCreatePaymentPendingLimit(t *testing.T) {
	s := newServer(t)

	body := map[string]any{"amount": 1, "cashierId": "c1"}
	for i := 0; i < order.MaxPendingPerCashier; i++ {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/payments/create", s.token, body, nil))
	}

	var errOut errorBody
	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/payments/create", s.token, body, &errOut))
	require.Equal(t, "Maximum pending payments limit reached for this cashier", errOut.Error)
}

func TestExecutePayment(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	o, err := s.orders.Create(ctx, orderApp.CreateInput{Amount: mustDecimal(t, "7"), CashierID: "c1"})
	require.NoError(t, err)

	s.payments.Settler = &fakeSettler{executeFn: func(ctx context.Context, id string) (*settlement.Result, error) {
		if _, err := s.orders.Complete(ctx, id, "0xbeef"); err != nil {
			return nil, err
		}
		return &settlement.Result{OrderID: id, TransactionHash: "0xbeef", BlockNumber: 99}, nil
	}}

	var out struct {
		Status string `json:"status"`
		Data   struct {
			Message     string    `json:"message"`
			Payment     orderBody `json:"payment"`
			Transaction struct {
				Hash        string `json:"hash"`
				BlockNumber uint64 `json:"blockNumber"`
			} `json:"transaction"`
		} `json:"data"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/payments/execute", s.token,
		map[string]string{"paymentId": o.ID}, &out))
	require.Equal(t, "success", out.Status)
	require.Equal(t, "Payment executed successfully", out.Data.Message)
	require.Equal(t, "completed", out.Data.Payment.Status)
	require.Equal(t, "0xbeef", out.Data.Transaction.Hash)
	require.Equal(t, uint64(99), out.Data.Transaction.BlockNumber)
}

func TestExecutePaymentErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   map[string]string
		err    error
		status int
		msg    string
	}{
		{"missing id", map[string]string{}, nil, http.StatusBadRequest, "Payment ID is required"},
		{"unknown order", map[string]string{"paymentId": "x"}, order.ErrOrderNotFound, http.StatusNotFound, "Payment not found"},
		{"not pending", map[string]string{"paymentId": "x"}, settlement.ErrOrderNotPending, http.StatusBadRequest, "Payment is not in pending status"},
		{"chain failure", map[string]string{"paymentId": "x"}, settlement.ErrExecutionFailed, http.StatusInternalServerError, "Failed to execute payment"},
		{"in flight", map[string]string{"paymentId": "x"}, settlement.ErrSettlementInProgress, http.StatusConflict, settlement.ErrSettlementInProgress.Error()},
		{"interrupted", map[string]string{"paymentId": "x"}, settlement.ErrSettlementInterrupted, http.StatusServiceUnavailable, "Payment settlement interrupted, retry later"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t)
			s.payments.Settler = &fakeSettler{executeFn: func(context.Context, string) (*settlement.Result, error) {
				return nil, tc.err
			}}

			var errOut errorBody
			require.Equal(t, tc.status, s.do(t, http.MethodPost, "/api/payments/execute", s.token, tc.body, &errOut))
			require.Equal(t, tc.msg, errOut.Error)
		})
	}
}

func TestOnchainOrder(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()

	o, err := s.orders.Create(ctx, orderApp.CreateInput{Amount: mustDecimal(t, "12.5"), CashierID: "c1"})
	require.NoError(t, err)

	var errOut errorBody
	require.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/api/payments/"+o.ID+"/onchain", "", nil, &errOut))

	payer := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	var asked string
	s.payments.Reader = &fakeReader{getOrderFn: func(unique string) (*chain.OnchainOrder, error) {
		asked = unique
		return &chain.OnchainOrder{
			Token:  common.HexToAddress("0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359"),
			Amount: big.NewInt(12_500_000),
			Paid:   true,
			Payer:  payer,
			Fee:    big.NewInt(125_000),
		}, nil
	}}

	var out map[string]any
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/payments/"+o.ID+"/onchain", "", nil, &out))
	require.Equal(t, o.UniqueID, asked)
	require.Equal(t, "12.5", out["amount"])
	require.Equal(t, "0.125", out["fee"])
	require.Equal(t, true, out["paid"])
	require.Equal(t, payer.Hex(), out["payer"])

	s.payments.Reader = &fakeReader{getOrderFn: func(string) (*chain.OnchainOrder, error) {
		return nil, errors.New("rpc down")
	}}
	require.Equal(t, http.StatusBadGateway, s.do(t, http.MethodGet, "/api/payments/"+o.ID+"/onchain", "", nil, &errOut))
}

func TestFee(t *testing.T) {
	s := newServer(t)
	s.payments.Reader = &fakeReader{feeFn: func(amount string) (*big.Int, error) {
		return big.NewInt(250_000), nil
	}}

	var out map[string]string
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/payments/fee?amount=25", "", nil, &out))
	require.Equal(t, "0.25", out["fee"])

	var errOut errorBody
	require.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/payments/fee?amount=abc", "", nil, &errOut))
}

func TestCashierAndBusinessRoutes(t *testing.T) {
	s := newServer(t)

	var biz struct {
		Business struct {
			ID    string `json:"id"`
			Owner string `json:"owner"`
		} `json:"business"`
	}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/business", s.token,
		map[string]string{"name": "Bakery"}, &biz))
	require.Equal(t, "owner-1", biz.Business.Owner)

	var created struct {
		Cashier struct {
			ID       string `json:"id"`
			Active   bool   `json:"active"`
			UniqueID string `json:"uniqueId"`
			PayURL   string `json:"payUrl"`
		} `json:"cashier"`
	}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/business/cashier", s.token,
		map[string]string{"name": "Till 2", "business": biz.Business.ID}, &created))
	require.True(t, created.Cashier.Active)
	require.Equal(t, "https://pay.example/qr/"+created.Cashier.UniqueID, created.Cashier.PayURL)

	var errOut errorBody
	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/business/cashier", s.token,
		map[string]string{"name": "Till 3", "business": "missing"}, &errOut))

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/business/cashier/"+created.Cashier.ID+"/active", s.token,
		map[string]bool{"active": false}, &created))
	require.False(t, created.Cashier.Active)

	var list struct {
		Businesses []any `json:"businesses"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/business", s.token, nil, &list))
	require.Len(t, list.Businesses, 2)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/business/"+biz.Business.ID, s.token, nil, nil))
}

func TestLookupQR(t *testing.T) {
	s := newServer(t)

	var out struct {
		QRCodeID string `json:"qrCodeId"`
		PayURL   string `json:"payURL"`
		Business struct {
			Name string `json:"name"`
			Logo string `json:"logo"`
		} `json:"business"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/qr/qr-front", "", nil, &out))
	require.Equal(t, "qr-front", out.QRCodeID)
	require.Equal(t, "https://pay.example/qr/qr-front", out.PayURL)
	require.Equal(t, "Cafe Central", out.Business.Name)
	require.Equal(t, "https://img/logo.png", out.Business.Logo)

	var errOut errorBody
	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/qr/unknown", "", nil, &errOut))

	require.NoError(t, s.cashiers.SetActive(context.Background(), "c1", false))
	require.Equal(t, http.StatusConflict, s.do(t, http.MethodGet, "/api/qr/qr-front", "", nil, &errOut))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/payments/create", s.token,
		map[string]any{"amount": 1, "cashierId": "c1"}, nil))

	var out metrics.Counters
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/metrics", "", nil, &out))
	require.Equal(t, uint64(1), out.OrdersCreated)
}
