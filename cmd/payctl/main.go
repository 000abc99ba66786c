// Command payctl drives a ChatterPay business backend from the terminal:
// payment orders, settlement, wallet onboarding and calldata encoding.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rcarvalho-pb/chatterpay_business-go/internal/application/onboarding"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infra/logging"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/chain"
	httpapi "github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/http"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/paymentclient"
	"github.com/rcarvalho-pb/chatterpay_business-go/internal/infrastructure/walletapi"
)

const usage = `usage: payctl <command> [flags]

commands:
  orders list|get|create|update|delete   manage payment orders
  execute <order-id>                     settle a pending order on chain
  onboard -email <addr> [-amount ...]    create a wallet and optionally pay
  encode -unique <id> -amount <n>        print createPaymentOrder calldata
  token -subject <user>                  mint a dashboard token (JWT_SECRET)

environment:
  PAYCTL_API_URL   backend base url (default http://localhost:8080)
  PAYCTL_TOKEN     bearer token for the business routes
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "orders":
		err = runOrders(ctx, args)
	case "execute":
		err = runExecute(ctx, args)
	case "onboard":
		err = runOnboard(ctx, args)
	case "encode":
		err = runEncode(args)
	case "token":
		err = runToken(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "payctl:", err)
		os.Exit(1)
	}
}

func apiURL() string {
	if v := os.Getenv("PAYCTL_API_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func paymentClient() *paymentclient.Client {
	return &paymentclient.Client{
		BaseURL:    apiURL(),
		Token:      os.Getenv("PAYCTL_TOKEN"),
		HTTPClient: newHTTPClient(),
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runOrders(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("orders: missing subcommand")
	}
	client := paymentClient()

	switch sub, rest := args[0], args[1:]; sub {
	case "list":
		orders, err := client.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(orders)

	case "get":
		if len(rest) != 1 {
			return errors.New("orders get: expected <order-id>")
		}
		o, err := client.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		return printJSON(o)

	case "create":
		fs := flag.NewFlagSet("orders create", flag.ContinueOnError)
		amount := fs.String("amount", "", "order amount, e.g. 12.50")
		cashierID := fs.String("cashier", "", "cashier id")
		currency := fs.String("currency", "", "currency (server default USDC)")
		network := fs.String("network", "", "network (server default polygon)")
		if err := fs.Parse(rest); err != nil {
			return err
		}

		req := paymentclient.CreateOrderRequest{CashierID: *cashierID, Currency: *currency, Network: *network}
		if *amount != "" {
			d, err := decimal.NewFromString(*amount)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			req.Amount = d
		}

		o, err := client.Create(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(o)

	case "update":
		fs := flag.NewFlagSet("orders update", flag.ContinueOnError)
		amount := fs.String("amount", "", "new amount")
		status := fs.String("status", "", "completed or failed")
		hash := fs.String("hash", "", "transaction hash, required with -status completed")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return errors.New("orders update: expected <order-id>")
		}

		var req paymentclient.UpdateOrderRequest
		if *amount != "" {
			d, err := decimal.NewFromString(*amount)
			if err != nil {
				return fmt.Errorf("amount: %w", err)
			}
			req.Amount = &d
		}
		if *status != "" {
			req.Status = status
		}
		if *hash != "" {
			req.TransactionHash = hash
		}

		o, err := client.Update(ctx, fs.Arg(0), req)
		if err != nil {
			return err
		}
		return printJSON(o)

	case "delete":
		if len(rest) != 1 {
			return errors.New("orders delete: expected <order-id>")
		}
		if err := client.Delete(ctx, rest[0]); err != nil {
			return err
		}
		fmt.Println("deleted", rest[0])
		return nil
	}

	return fmt.Errorf("orders: unknown subcommand %q", args[0])
}

func runExecute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("execute: expected <order-id>")
	}

	res, err := paymentClient().Execute(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runOnboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("onboard", flag.ContinueOnError)
	email := fs.String("email", "", "user email")
	amount := fs.String("amount", "", "optional payment amount")
	to := fs.String("to", "", "payment destination address")
	tokenID := fs.String("token-id", "", "provider token id for the payment")
	testTokens := fs.Bool("test-tokens", false, "request testnet tokens once the wallet exists")
	timeout := fs.Duration("challenge-timeout", 10*time.Minute, "how long to wait for each challenge")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend := &walletapi.Client{BaseURL: apiURL(), HTTPClient: newHTTPClient()}
	poller := &walletapi.ChallengePoller{
		Client:  backend,
		Timeout: *timeout,
		Prompt: func(id string) {
			fmt.Fprintf(os.Stderr, "complete challenge %s in the wallet app...\n", id)
		},
	}

	opts := []onboarding.Option{
		onboarding.WithLogger(logging.New(os.Stderr, "production")),
		onboarding.WithObserver(func(s onboarding.Status) {
			fmt.Fprintln(os.Stderr, "status:", s)
		}),
	}
	if *testTokens {
		opts = append(opts, onboarding.WithTestTokens())
	}
	machine := onboarding.New(backend, poller, opts...)

	var payment *onboarding.PaymentRequest
	if *amount != "" {
		payment = &onboarding.PaymentRequest{Amount: *amount, DestinationAddress: *to, TokenID: *tokenID}
	}

	session, err := machine.Submit(ctx, *email, payment)
	if err != nil {
		return err
	}
	return printJSON(session)
}

func runEncode(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	unique := fs.String("unique", "", "order unique id")
	amount := fs.String("amount", "", "order amount")
	token := fs.String("token", "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", "token contract address")
	decimals := fs.Int("decimals", int(chain.StablecoinDecimals), "token decimals")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *unique == "" || !common.IsHexAddress(*token) {
		return errors.New("encode: -unique and a valid -token are required")
	}

	builder, err := chain.NewCallBuilder()
	if err != nil {
		return err
	}
	orderID := chain.OrderID(*unique)
	data, err := builder.EncodeCreateOrder(orderID, common.HexToAddress(*token), *amount, int32(*decimals))
	if err != nil {
		return err
	}

	return printJSON(map[string]string{
		"orderId":  hexutil.Encode(orderID[:]),
		"calldata": hexutil.Encode(data),
	})
}

func runToken(args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	subject := fs.String("subject", "", "user id to embed as the token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" || *subject == "" {
		return errors.New("token: JWT_SECRET and -subject are required")
	}

	token, err := httpapi.IssueToken([]byte(secret), *subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
