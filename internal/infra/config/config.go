package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	Env    string
	AppURL string

	// Store selects the order/cashier persistence: memory, sqlite or postgres.
	Store       string
	SQLitePath  string
	DatabaseURL string

	JWTSecret string

	CircleAPIKey     string
	CircleBaseURL    string
	CircleBlockchain string
	CircleRetries    uint64

	RPCURL                  string
	RelayURL                string
	SignerKey               string
	ChainID                 int64
	PaymentProcessorAddress string
	TokenAddress            string
	TokenDecimals           int32
	GasLimit                uint64
	ConfirmTimeout          time.Duration

	AutoSettle         bool
	OutboxPollInterval time.Duration
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on system env variables")
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		Env:    getEnv("ENV", "development"),
		AppURL: getEnv("APP_URL", "http://localhost:3000"),

		Store:       getEnv("STORE", "memory"),
		SQLitePath:  getEnv("SQLITE_PATH", "chatterpay.db"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		CircleAPIKey:     getEnv("CIRCLE_API_KEY", ""),
		CircleBaseURL:    getEnv("CIRCLE_BASE_URL", "https://api.circle.com"),
		CircleBlockchain: getEnv("CIRCLE_BLOCKCHAIN", "ARB-SEPOLIA"),
		CircleRetries:    uint64(getEnvInt("CIRCLE_RETRIES", 3)),

		RPCURL:                  getEnv("RPC_URL", ""),
		RelayURL:                getEnv("RELAY_URL", ""),
		SignerKey:               getEnv("SIGNER_KEY", ""),
		ChainID:                 getEnvInt("CHAIN_ID", 137),
		PaymentProcessorAddress: getEnv("PAYMENT_PROCESSOR_ADDRESS", ""),
		TokenAddress:            getEnv("USDC_ADDRESS", "0x2791bca1f2de4661ed88a30c99a7a9449aa84174"),
		TokenDecimals:           int32(getEnvInt("TOKEN_DECIMALS", 6)),
		GasLimit:                uint64(getEnvInt("GAS_LIMIT", 500000)),
		ConfirmTimeout:          getEnvDuration("CONFIRM_TIMEOUT", 2*time.Minute),

		AutoSettle:         getEnvBool("AUTO_SETTLE", false),
		OutboxPollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
