package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS businesses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner TEXT NOT NULL,
			phone_number TEXT NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,

		`CREATE TABLE IF NOT EXISTS cashiers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			business_id TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			unique_id TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,

		`CREATE TABLE IF NOT EXISTS payment_orders (
			id TEXT PRIMARY KEY,
			unique_id TEXT NOT NULL UNIQUE,
			amount NUMERIC(38, 18) NOT NULL,
			currency TEXT NOT NULL,
			network TEXT NOT NULL,
			cashier_id TEXT NOT NULL REFERENCES cashiers (id),
			status TEXT NOT NULL,
			transaction_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,

		`CREATE INDEX IF NOT EXISTS idx_payment_orders_cashier_status
			ON payment_orders (cashier_id, status);`,

		`CREATE TABLE IF NOT EXISTS outbox_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			payload BYTEA NOT NULL,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			published_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
