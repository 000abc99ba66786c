package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/metrics"
)

type Router struct {
	Orders   *OrderHandler
	Payments *PaymentsHandler
	Cashiers *CashierHandler
	// Circle is optional; the proxy routes are not mounted without it.
	Circle    *CircleHandler
	JWTSecret []byte
	Metrics   *metrics.Counters
	Logger    logging.Logger
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(rt.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, rt.Metrics.Snapshot())
	})

	r.Get("/api/qr/{uniqueId}", rt.Cashiers.LookupQR)

	r.Route("/api/payments", func(r chi.Router) {
		r.Get("/fee", rt.Payments.Fee)
		r.Get("/{id}/onchain", rt.Payments.Onchain)

		r.Group(func(r chi.Router) {
			r.Use(JWTAuth(rt.JWTSecret))
			r.Post("/create", rt.Payments.Create)
			r.Post("/execute", rt.Payments.Execute)
		})
	})

	if rt.Circle != nil {
		r.Route("/api/circle", func(r chi.Router) {
			r.Post("/users", rt.Circle.CreateUser)
			r.Post("/users/{userId}/token", rt.Circle.CreateUserToken)
			r.Post("/pin-challenge", rt.Circle.PinChallenge)
			r.Get("/wallet-status", rt.Circle.WalletStatus)
			r.Post("/request-tokens", rt.Circle.RequestTokens)
			r.Post("/create-transaction", rt.Circle.CreateTransaction)
			r.Get("/challenge-status", rt.Circle.ChallengeStatus)
			r.Get("/transaction-status", rt.Circle.TransactionStatus)
		})
	}

	r.Route("/business", func(r chi.Router) {
		r.Use(JWTAuth(rt.JWTSecret))

		r.Post("/", rt.Cashiers.CreateBusiness)
		r.Get("/", rt.Cashiers.ListBusinesses)

		r.Route("/payment", func(r chi.Router) {
			r.Post("/", rt.Orders.Create)
			r.Get("/", rt.Orders.List)
			r.Get("/{id}", rt.Orders.Get)
			r.Put("/{id}", rt.Orders.Update)
			r.Delete("/{id}", rt.Orders.Delete)
		})

		r.Route("/cashier", func(r chi.Router) {
			r.Post("/", rt.Cashiers.CreateCashier)
			r.Get("/", rt.Cashiers.ListCashiers)
			r.Get("/{id}", rt.Cashiers.GetCashier)
			r.Put("/{id}/active", rt.Cashiers.SetCashierActive)
		})

		r.Get("/{id}", rt.Cashiers.GetBusiness)
	})

	return r
}

func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"duration-ms": time.Since(start).Milliseconds(),
				"request-id":  middleware.GetReqID(r.Context()),
			})
		})
	}
}
